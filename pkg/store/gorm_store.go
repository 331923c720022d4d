package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"airtech/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &ProfileModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser registers a user. Accounts are created once and never updated.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// ListProfiles returns the owner's profiles in insertion order.
func (s *GormStore) ListProfiles(email string) ([]domain.SavedProfile, error) {
	var models []ProfileModel
	if err := s.db.Where("owner_email = ?", email).Order("position ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.SavedProfile, 0, len(models))
	for _, m := range models {
		p, err := profileFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, nil
}

// AppendProfile adds a profile to the end of the owner's list.
func (s *GormStore) AppendProfile(email string, p domain.SavedProfile) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ProfileModel{}).Where("owner_email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		model, err := profileToModel(email, int(count), p)
		if err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		Email:     u.Email,
		Password:  u.Password,
		CreatedAt: u.CreatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		Email:     m.Email,
		Password:  m.Password,
		CreatedAt: m.CreatedAt,
	}
}

func profileToModel(owner string, position int, p domain.SavedProfile) (ProfileModel, error) {
	payload, err := json.Marshal(p.Profile)
	if err != nil {
		return ProfileModel{}, fmt.Errorf("encode profile: %w", err)
	}
	return ProfileModel{
		ID:         p.ID,
		OwnerEmail: owner,
		Name:       p.Name,
		Position:   position,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func profileFromModel(m ProfileModel) (domain.SavedProfile, error) {
	var profile domain.CompanyProfile
	if len(m.Payload) > 0 {
		if err := json.Unmarshal(m.Payload, &profile); err != nil {
			return domain.SavedProfile{}, fmt.Errorf("decode profile: %w", err)
		}
	}
	return domain.SavedProfile{
		ID:      m.ID,
		Name:    m.Name,
		Profile: profile,
	}, nil
}
