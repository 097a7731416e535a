// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// JobRepository 工单仓储
type JobRepository struct {
	db DB
}

// NewJobRepository 创建工单仓储
func NewJobRepository(db DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, org_id, job_no, title, category,
	estimated_duration, scheduled_date, scheduled_time,
	customer_zip, location, zone, required_certs, priority, notes, status,
	assigned_tech_id, assigned_tech_name, assigned_at, assigned_by,
	created_at, updated_at`

// Create 创建工单
func (r *JobRepository) Create(ctx context.Context, job *model.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = "pending"
	}

	locJSON, _ := json.Marshal(job.Location)
	certsJSON, _ := json.Marshal(job.RequiredCerts)

	query := fmt.Sprintf(`
		INSERT INTO jobs (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`, jobColumns)

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.OrgID, job.JobNo, job.Title, job.Category,
		string(job.EstimatedDuration), job.ScheduledDate, job.ScheduledTime,
		job.CustomerZip, locJSON, job.Zone, certsJSON, job.Priority, job.Notes, job.Status,
		job.AssignedTechID, job.AssignedTechName, job.AssignedAt, string(job.AssignedBy),
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建工单失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取工单
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM jobs
		WHERE id = $1 AND deleted_at IS NULL
	`, jobColumns)

	return scanJob(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新工单
func (r *JobRepository) Update(ctx context.Context, job *model.Job) error {
	job.UpdatedAt = time.Now()

	locJSON, _ := json.Marshal(job.Location)
	certsJSON, _ := json.Marshal(job.RequiredCerts)

	query := `
		UPDATE jobs SET
			job_no = $2, title = $3, category = $4,
			estimated_duration = $5, scheduled_date = $6, scheduled_time = $7,
			customer_zip = $8, location = $9, zone = $10, required_certs = $11,
			priority = $12, notes = $13, status = $14, updated_at = $15
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		job.ID, job.JobNo, job.Title, job.Category,
		string(job.EstimatedDuration), job.ScheduledDate, job.ScheduledTime,
		job.CustomerZip, locJSON, job.Zone, certsJSON,
		job.Priority, job.Notes, job.Status, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新工单失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("工单不存在")
	}

	return nil
}

// Delete 软删除工单
func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE jobs SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除工单失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("工单不存在")
	}

	return nil
}

// AssignTech 把工单指派给技师（分配回写）
func (r *JobRepository) AssignTech(ctx context.Context, jobID, techID uuid.UUID, techName string, source model.AssignSource) error {
	query := `
		UPDATE jobs SET
			assigned_tech_id = $2, assigned_tech_name = $3,
			assigned_at = $4, assigned_by = $5,
			status = 'assigned', updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, jobID, techID, techName, time.Now(), string(source))
	if err != nil {
		return fmt.Errorf("派工回写失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("工单不存在")
	}

	return nil
}

// ClearAssignment 撤销工单分配，放回待派队列
func (r *JobRepository) ClearAssignment(ctx context.Context, jobID uuid.UUID) error {
	query := `
		UPDATE jobs SET
			assigned_tech_id = NULL, assigned_tech_name = '',
			assigned_at = NULL, assigned_by = '',
			status = 'pending', updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, jobID, time.Now())
	if err != nil {
		return fmt.Errorf("撤销分配失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("工单不存在")
	}

	return nil
}

// ListByDate 获取某天的全部工单
func (r *JobRepository) ListByDate(ctx context.Context, orgID uuid.UUID, date string) ([]*model.Job, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM jobs
		WHERE org_id = $1 AND scheduled_date = $2 AND deleted_at IS NULL
		ORDER BY scheduled_time, created_at
	`, jobColumns)

	return r.queryJobs(ctx, query, orgID, date)
}

// ListUnassigned 获取某天的待派工单
func (r *JobRepository) ListUnassigned(ctx context.Context, orgID uuid.UUID, date string) ([]*model.Job, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM jobs
		WHERE org_id = $1 AND scheduled_date = $2
			AND assigned_tech_id IS NULL AND status = 'pending'
			AND deleted_at IS NULL
		ORDER BY priority DESC, created_at
	`, jobColumns)

	return r.queryJobs(ctx, query, orgID, date)
}

// ListByDateRange 获取日期区间内的全部工单（跨日时段扫描用）
func (r *JobRepository) ListByDateRange(ctx context.Context, orgID uuid.UUID, start, end string) ([]*model.Job, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM jobs
		WHERE org_id = $1 AND scheduled_date >= $2 AND scheduled_date <= $3
			AND deleted_at IS NULL
		ORDER BY scheduled_date, scheduled_time
	`, jobColumns)

	return r.queryJobs(ctx, query, orgID, start, end)
}

// List 查询工单列表
func (r *JobRepository) List(ctx context.Context, filter ListFilter) ([]*model.Job, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if filter.OrgID != nil {
		conditions = append(conditions, fmt.Sprintf("org_id = $%d", argIndex))
		args = append(args, *filter.OrgID)
		argIndex++
	}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(job_no ILIKE $%d OR title ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	if filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("scheduled_date >= $%d", argIndex))
		args = append(args, filter.StartDate)
		argIndex++
	}

	if filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("scheduled_date <= $%d", argIndex))
		args = append(args, filter.EndDate)
		argIndex++
	}

	// 按分类过滤
	if category, ok := filter.Extra["category"].(string); ok && category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, category)
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	// 查询总数
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM jobs WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	orderDir := filter.OrderDir
	if orderDir == "" {
		orderDir = "desc"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM jobs
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, jobColumns, whereClause, orderBy, orderDir, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	jobs, err := r.queryJobs(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

// queryJobs 执行查询并扫描全部结果行
func (r *JobRepository) queryJobs(ctx context.Context, query string, args ...interface{}) ([]*model.Job, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询工单失败: %w", err)
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		job, err := scanJobRow(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// scanJob 扫描单行工单数据
func scanJob(row *sql.Row) (*model.Job, error) {
	job := &model.Job{}
	var duration, assignedBy string
	var locJSON, certsJSON []byte

	err := row.Scan(
		&job.ID, &job.OrgID, &job.JobNo, &job.Title, &job.Category,
		&duration, &job.ScheduledDate, &job.ScheduledTime,
		&job.CustomerZip, &locJSON, &job.Zone, &certsJSON, &job.Priority, &job.Notes, &job.Status,
		&job.AssignedTechID, &job.AssignedTechName, &job.AssignedAt, &assignedBy,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描工单数据失败: %w", err)
	}

	job.EstimatedDuration = model.FlexDuration(duration)
	job.AssignedBy = model.AssignSource(assignedBy)
	json.Unmarshal(locJSON, &job.Location)
	json.Unmarshal(certsJSON, &job.RequiredCerts)

	return job, nil
}

// scanJobRow 扫描Rows中的工单数据
func scanJobRow(rows *sql.Rows) (*model.Job, error) {
	job := &model.Job{}
	var duration, assignedBy string
	var locJSON, certsJSON []byte

	err := rows.Scan(
		&job.ID, &job.OrgID, &job.JobNo, &job.Title, &job.Category,
		&duration, &job.ScheduledDate, &job.ScheduledTime,
		&job.CustomerZip, &locJSON, &job.Zone, &certsJSON, &job.Priority, &job.Notes, &job.Status,
		&job.AssignedTechID, &job.AssignedTechName, &job.AssignedAt, &assignedBy,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描工单数据失败: %w", err)
	}

	job.EstimatedDuration = model.FlexDuration(duration)
	job.AssignedBy = model.AssignSource(assignedBy)
	json.Unmarshal(locJSON, &job.Location)
	json.Unmarshal(certsJSON, &job.RequiredCerts)

	return job, nil
}
