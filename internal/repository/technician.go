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

// TechnicianRepository 技师仓储
type TechnicianRepository struct {
	db DB
}

// NewTechnicianRepository 创建技师仓储
func NewTechnicianRepository(db DB) *TechnicianRepository {
	return &TechnicianRepository{db: db}
}

const technicianColumns = `id, org_id, name, code, phone, email, status,
	working_hours, max_jobs_per_day, max_hours_per_day, buffer_minutes,
	skills, specialties, certifications,
	home_zip, home_location, max_travel_miles, preferred_zones,
	created_at, updated_at`

// Create 创建技师
func (r *TechnicianRepository) Create(ctx context.Context, tech *model.Technician) error {
	if tech.ID == uuid.Nil {
		tech.ID = uuid.New()
	}
	now := time.Now()
	tech.CreatedAt = now
	tech.UpdatedAt = now

	hoursJSON, _ := json.Marshal(tech.WorkingHours)
	skillsJSON, _ := json.Marshal(tech.Skills)
	specialtiesJSON, _ := json.Marshal(tech.Specialties)
	certsJSON, _ := json.Marshal(tech.Certifications)
	locJSON, _ := json.Marshal(tech.HomeLocation)
	zonesJSON, _ := json.Marshal(tech.PreferredZones)

	query := fmt.Sprintf(`
		INSERT INTO technicians (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`, technicianColumns)

	_, err := r.db.ExecContext(ctx, query,
		tech.ID, tech.OrgID, tech.Name, tech.Code, tech.Phone, tech.Email, tech.Status,
		hoursJSON, tech.MaxJobsPerDay, tech.MaxHoursPerDay, tech.BufferMinutes,
		skillsJSON, specialtiesJSON, certsJSON,
		tech.HomeZip, locJSON, tech.MaxTravelMiles, zonesJSON,
		tech.CreatedAt, tech.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建技师失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取技师
func (r *TechnicianRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Technician, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM technicians
		WHERE id = $1 AND deleted_at IS NULL
	`, technicianColumns)

	return scanTechnician(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新技师
func (r *TechnicianRepository) Update(ctx context.Context, tech *model.Technician) error {
	tech.UpdatedAt = time.Now()

	hoursJSON, _ := json.Marshal(tech.WorkingHours)
	skillsJSON, _ := json.Marshal(tech.Skills)
	specialtiesJSON, _ := json.Marshal(tech.Specialties)
	certsJSON, _ := json.Marshal(tech.Certifications)
	locJSON, _ := json.Marshal(tech.HomeLocation)
	zonesJSON, _ := json.Marshal(tech.PreferredZones)

	query := `
		UPDATE technicians SET
			name = $2, code = $3, phone = $4, email = $5, status = $6,
			working_hours = $7, max_jobs_per_day = $8, max_hours_per_day = $9, buffer_minutes = $10,
			skills = $11, specialties = $12, certifications = $13,
			home_zip = $14, home_location = $15, max_travel_miles = $16, preferred_zones = $17,
			updated_at = $18
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		tech.ID, tech.Name, tech.Code, tech.Phone, tech.Email, tech.Status,
		hoursJSON, tech.MaxJobsPerDay, tech.MaxHoursPerDay, tech.BufferMinutes,
		skillsJSON, specialtiesJSON, certsJSON,
		tech.HomeZip, locJSON, tech.MaxTravelMiles, zonesJSON,
		tech.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新技师失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("技师不存在")
	}

	return nil
}

// Delete 软删除技师
func (r *TechnicianRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE technicians SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除技师失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("技师不存在")
	}

	return nil
}

// List 查询技师列表
func (r *TechnicianRepository) List(ctx context.Context, filter ListFilter) ([]*model.Technician, int, error) {
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
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d OR phone ILIKE $%d)", argIndex, argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	// 查询总数
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM technicians WHERE %s", whereClause)
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
		SELECT %s FROM technicians
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, technicianColumns, whereClause, orderBy, orderDir, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询列表失败: %w", err)
	}
	defer rows.Close()

	var technicians []*model.Technician
	for rows.Next() {
		tech, err := scanTechnicianRow(rows)
		if err != nil {
			return nil, 0, err
		}
		technicians = append(technicians, tech)
	}

	return technicians, total, nil
}

// ListActive 获取组织下所有在职技师（派工引擎用的全量名册）
func (r *TechnicianRepository) ListActive(ctx context.Context, orgID uuid.UUID) ([]*model.Technician, error) {
	filter := DefaultListFilter().WithOrgID(orgID).WithStatus("active").WithLimit(10000)
	technicians, _, err := r.List(ctx, filter)
	return technicians, err
}

// scanTechnician 扫描单行技师数据
func scanTechnician(row *sql.Row) (*model.Technician, error) {
	tech := &model.Technician{}
	var hoursJSON, skillsJSON, specialtiesJSON, certsJSON, locJSON, zonesJSON []byte

	err := row.Scan(
		&tech.ID, &tech.OrgID, &tech.Name, &tech.Code, &tech.Phone, &tech.Email, &tech.Status,
		&hoursJSON, &tech.MaxJobsPerDay, &tech.MaxHoursPerDay, &tech.BufferMinutes,
		&skillsJSON, &specialtiesJSON, &certsJSON,
		&tech.HomeZip, &locJSON, &tech.MaxTravelMiles, &zonesJSON,
		&tech.CreatedAt, &tech.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描技师数据失败: %w", err)
	}

	unmarshalTechnicianJSON(tech, hoursJSON, skillsJSON, specialtiesJSON, certsJSON, locJSON, zonesJSON)
	return tech, nil
}

// scanTechnicianRow 扫描Rows中的技师数据
func scanTechnicianRow(rows *sql.Rows) (*model.Technician, error) {
	tech := &model.Technician{}
	var hoursJSON, skillsJSON, specialtiesJSON, certsJSON, locJSON, zonesJSON []byte

	err := rows.Scan(
		&tech.ID, &tech.OrgID, &tech.Name, &tech.Code, &tech.Phone, &tech.Email, &tech.Status,
		&hoursJSON, &tech.MaxJobsPerDay, &tech.MaxHoursPerDay, &tech.BufferMinutes,
		&skillsJSON, &specialtiesJSON, &certsJSON,
		&tech.HomeZip, &locJSON, &tech.MaxTravelMiles, &zonesJSON,
		&tech.CreatedAt, &tech.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描技师数据失败: %w", err)
	}

	unmarshalTechnicianJSON(tech, hoursJSON, skillsJSON, specialtiesJSON, certsJSON, locJSON, zonesJSON)
	return tech, nil
}

func unmarshalTechnicianJSON(tech *model.Technician, hours, skills, specialties, certs, loc, zones []byte) {
	json.Unmarshal(hours, &tech.WorkingHours)
	json.Unmarshal(skills, &tech.Skills)
	json.Unmarshal(specialties, &tech.Specialties)
	json.Unmarshal(certs, &tech.Certifications)
	json.Unmarshal(loc, &tech.HomeLocation)
	json.Unmarshal(zones, &tech.PreferredZones)
}
