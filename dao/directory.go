package dao

import (
	"aintranet-backend/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

func (s *Store) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := s.DB.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UserExists 用户名或邮箱是否已被占用
func (s *Store) UserExists(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return s.DB.WithContext(ctx).Create(user).Error
}

func (s *Store) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	var employees []model.Employee
	if err := s.DB.WithContext(ctx).
		Preload("Department").
		Where("active = ?", true).
		Order("last_name, first_name").
		Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

// SearchEmployees 按姓名、职位、邮箱模糊匹配
func (s *Store) SearchEmployees(ctx context.Context, term string) ([]model.Employee, error) {
	like := "%" + term + "%"
	var employees []model.Employee
	if err := s.DB.WithContext(ctx).
		Preload("Department").
		Where("active = ?", true).
		Where("first_name LIKE ? OR last_name LIKE ? OR position LIKE ? OR email LIKE ?",
			like, like, like, like).
		Order("last_name, first_name").
		Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (s *Store) GetEmployeeByUserID(ctx context.Context, userID uint) (*model.Employee, error) {
	var employee model.Employee
	if err := s.DB.WithContext(ctx).
		Preload("Department").
		Where("user_id = ?", userID).
		First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &employee, nil
}

func (s *Store) ListDepartments(ctx context.Context) ([]model.Department, error) {
	var departments []model.Department
	if err := s.DB.WithContext(ctx).
		Where("active = ?", true).
		Order("name").
		Find(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}
