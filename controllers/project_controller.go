package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/planpulse/planpulse/models"
	"github.com/planpulse/planpulse/services"
	"github.com/planpulse/planpulse/utils"
)

// ProjectController handles project listing, creation and stats.
type ProjectController struct {
	db          *gorm.DB
	completions *services.CompletionService
}

// NewProjectController creates a new controller instance.
func NewProjectController(db *gorm.DB, completions *services.CompletionService) *ProjectController {
	return &ProjectController{db: db, completions: completions}
}

// projectView is the list payload: the project plus its streak summary,
// today's task and how many tasks are still pending.
type projectView struct {
	models.Project
	Streak      *models.ProjectStreak `json:"streak"`
	TodaysTask  *models.Task          `json:"todays_task"`
	PendingTask int64                 `json:"pending_tasks_count"`
}

// ListProjects returns all active projects with today's task and streak
// state, cached until the next mutation.
func (p *ProjectController) ListProjects(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(utils.CacheKeyProjects); ok {
		utils.Success(ctx, json.RawMessage(b))
		return
	}

	var projects []models.Project
	if err := p.db.Where("is_active = ?", true).Order("created_at DESC").Find(&projects).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to get projects")
		return
	}

	ids := make([]uint, 0, len(projects))
	for _, proj := range projects {
		ids = append(ids, proj.ID)
	}

	streaks := map[uint]*models.ProjectStreak{}
	if len(ids) > 0 {
		var rows []models.ProjectStreak
		if err := p.db.Where("project_id IN ?", ids).Find(&rows).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to get projects")
			return
		}
		for i := range rows {
			streaks[rows[i].ProjectID] = &rows[i]
		}
	}

	today := utils.Today()
	views := make([]projectView, 0, len(projects))
	for _, proj := range projects {
		view := projectView{Project: proj, Streak: streaks[proj.ID]}

		var task models.Task
		err := p.db.Where("project_id = ? AND is_bonus = ? AND (assigned_date = ? OR (assigned_date IS NULL AND is_completed = ?))",
			proj.ID, false, today, false).
			Order("assigned_date DESC, priority DESC, id ASC").
			First(&task).Error
		if err == nil {
			view.TodaysTask = &task
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to get projects")
			return
		}

		if err := p.db.Model(&models.Task{}).
			Where("project_id = ? AND is_completed = ?", proj.ID, false).
			Count(&view.PendingTask).Error; err != nil {
			view.PendingTask = 0
		}

		views = append(views, view)
	}

	utils.CacheSetJSON(utils.CacheKeyProjects, views, 10*time.Minute)
	utils.Success(ctx, views)
}

// CreateProject creates a project together with its empty streak record.
func (p *ProjectController) CreateProject(ctx *gin.Context) {
	type request struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Color       string `json:"color"`
		Icon        string `json:"icon"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	project := models.Project{
		Name:        utils.SanitizeText(req.Name),
		Description: utils.Sanitize(req.Description),
		Color:       req.Color,
		Icon:        req.Icon,
		IsActive:    true,
	}
	if project.Color == "" {
		project.Color = "#3B82F6"
	}
	if project.Icon == "" {
		project.Icon = "📁"
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		return tx.Create(&models.ProjectStreak{ProjectID: project.ID}).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to create project")
		return
	}

	utils.InvalidateByPrefix(utils.CacheKeyProjects)
	utils.Success(ctx, project)
}

// GetProjectStats returns the streak snapshot plus ledger aggregates and
// earned badges for one project.
func (p *ProjectController) GetProjectStats(ctx *gin.Context) {
	projectID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var project models.Project
	if err := p.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "project not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to get project stats")
		return
	}

	streak, err := p.completions.GetStreakState(projectID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to get project stats")
		return
	}

	var daysWorked int64
	if err := p.db.Model(&models.ProgressEntry{}).
		Where("project_id = ? AND completed = ?", projectID, true).
		Distinct("day").
		Count(&daysWorked).Error; err != nil {
		daysWorked = 0
	}

	var tasksCompleted int64
	if err := p.db.Model(&models.ProgressEntry{}).
		Where("project_id = ? AND completed = ?", projectID, true).
		Count(&tasksCompleted).Error; err != nil {
		tasksCompleted = 0
	}

	badges, err := p.completions.GetBadges(projectID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to get project stats")
		return
	}

	utils.Success(ctx, gin.H{
		"project":         project,
		"streak":          streak,
		"days_worked":     daysWorked,
		"tasks_completed": tasksCompleted,
		"badges":          badges,
	})
}

// GetProjectStreak returns just the streak state for one project.
func (p *ProjectController) GetProjectStreak(ctx *gin.Context) {
	projectID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	streak, err := p.completions.GetStreakState(projectID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to get streak state")
		return
	}
	utils.Success(ctx, streak)
}

// GetProjectBadges returns the badges the project has earned.
func (p *ProjectController) GetProjectBadges(ctx *gin.Context) {
	projectID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	badges, err := p.completions.GetBadges(projectID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to get badges")
		return
	}
	utils.Success(ctx, badges)
}

// paramID parses an unsigned id path parameter, writing the error response
// itself when the value is malformed.
func paramID(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid id parameter")
		return 0, false
	}
	return uint(id), true
}
