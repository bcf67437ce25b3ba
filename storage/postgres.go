package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"linkcut/config"
	"linkcut/models"
)

const (
	connectRetries = 5
	retryDelay     = 3 * time.Second
)

// Postgres implements LinkStore and UserStore on top of gorm.
type Postgres struct {
	db *gorm.DB
}

// Connect opens the database, retrying a few times so the service
// survives the database coming up after it, and migrates the schema.
func Connect(cfg config.Database) (*Postgres, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)

	var db *gorm.DB
	var err error
	for i := 0; i < connectRetries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database (attempt %d/%d): %v", i+1, connectRetries, err)
		time.Sleep(retryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Link{}, &models.ClickStat{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &Postgres{db: db}, nil
}

func (p *Postgres) Insert(ctx context.Context, link *models.Link) error {
	err := p.db.WithContext(ctx).Create(link).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrCodeTaken
	}
	return err
}

func (p *Postgres) FindByCode(ctx context.Context, code string) (*models.Link, error) {
	var link models.Link
	err := p.db.WithContext(ctx).Where("short_code = ?", code).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (p *Postgres) DeleteByCode(ctx context.Context, code string) error {
	result := p.db.WithContext(ctx).Where("short_code = ?", code).Delete(&models.Link{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) FindByOwner(ctx context.Context, ownerID uint) ([]models.Link, error) {
	links := []models.Link{}
	err := p.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (p *Postgres) RecordClick(ctx context.Context, stat *models.ClickStat) error {
	err := p.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("id = ?", stat.LinkID).
		UpdateColumn("click_count", gorm.Expr("click_count + ?", 1)).Error
	if err != nil {
		return err
	}
	return p.db.WithContext(ctx).Create(stat).Error
}

func (p *Postgres) CreateUser(ctx context.Context, user *models.User) error {
	err := p.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserExists
	}
	return err
}

func (p *Postgres) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := p.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *Postgres) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := p.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *Postgres) AppendLink(ctx context.Context, ownerID, linkID uint) error {
	result := p.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("id = ?", linkID).
		Update("owner_id", ownerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
