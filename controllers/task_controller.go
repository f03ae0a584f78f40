package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/planpulse/planpulse/models"
	"github.com/planpulse/planpulse/services"
	"github.com/planpulse/planpulse/utils"
)

// TaskController handles task CRUD and the completion endpoints that feed
// the accounting core.
type TaskController struct {
	db          *gorm.DB
	completions *services.CompletionService
}

// NewTaskController creates a new controller instance.
func NewTaskController(db *gorm.DB, completions *services.CompletionService) *TaskController {
	return &TaskController{db: db, completions: completions}
}

// ListTasks returns a project's tasks, optionally filtered by completion.
func (t *TaskController) ListTasks(ctx *gin.Context) {
	projectID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	query := t.db.Where("project_id = ?", projectID)
	switch ctx.Query("completed") {
	case "true":
		query = query.Where("is_completed = ?", true)
	case "false":
		query = query.Where("is_completed = ?", false)
	}

	var tasks []models.Task
	if err := query.Order("is_completed ASC, priority DESC, created_at ASC").Find(&tasks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to get tasks")
		return
	}
	utils.Success(ctx, tasks)
}

// CreateTask adds a task to a project.
func (t *TaskController) CreateTask(ctx *gin.Context) {
	projectID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	type request struct {
		Title        string `json:"title" binding:"required"`
		Description  string `json:"description"`
		Priority     int    `json:"priority"`
		AssignedDate string `json:"assigned_date"` // YYYY-MM-DD in the civil zone
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	var project models.Project
	if err := t.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "project not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to create task")
		return
	}

	task := models.Task{
		ProjectID:   projectID,
		Title:       utils.SanitizeText(req.Title),
		Description: utils.Sanitize(req.Description),
		Priority:    req.Priority,
	}
	if req.AssignedDate != "" {
		day, err := time.ParseInLocation("2006-01-02", req.AssignedDate, utils.CivilZone())
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40003, "invalid assigned_date, expected YYYY-MM-DD")
			return
		}
		task.AssignedDate = &day
	}

	if err := t.db.Create(&task).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to create task")
		return
	}

	utils.InvalidateByPrefix(utils.CacheKeyProjects)
	utils.Success(ctx, task)
}

// CompleteTask runs the completion transaction for a task and returns the
// resulting streak, points delta and any newly earned badges.
func (t *TaskController) CompleteTask(ctx *gin.Context) {
	taskID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	result, err := t.completions.CompleteTask(taskID)
	if err != nil {
		writeCompletionError(ctx, err)
		return
	}

	invalidatePlannerCaches()
	utils.Success(ctx, result)
}

// UncompleteTask reverses a completion; points come back, streak state is
// left as is.
func (t *TaskController) UncompleteTask(ctx *gin.Context) {
	taskID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	result, err := t.completions.UncompleteTask(taskID)
	if err != nil {
		writeCompletionError(ctx, err)
		return
	}

	invalidatePlannerCaches()
	utils.Success(ctx, result)
}

// NextTask promotes the project's highest-priority pending task to a bonus
// task for today, so the operator can keep going after the daily task.
func (t *TaskController) NextTask(ctx *gin.Context) {
	projectID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	today := utils.Today()
	var task models.Task
	err := t.db.Where("project_id = ? AND is_completed = ? AND is_bonus = ? AND (assigned_date IS NULL OR assigned_date > ?)",
		projectID, false, false, today).
		Order("priority DESC, created_at ASC").
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Success(ctx, nil)
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to get next task")
		return
	}

	task.IsBonus = true
	task.AssignedDate = &today
	if err := t.db.Save(&task).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to get next task")
		return
	}

	utils.InvalidateByPrefix(utils.CacheKeyProjects)
	utils.Success(ctx, task)
}

func writeCompletionError(ctx *gin.Context, err error) {
	if errors.Is(err, services.ErrTaskNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40402, "task not found")
		return
	}
	// storage failures roll the whole transaction back; the caller may retry
	utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to record completion")
}

func invalidatePlannerCaches() {
	utils.InvalidateByPrefix(utils.CacheKeyProjects)
	utils.InvalidateByPrefix(utils.CacheKeyGlobalStats)
}
