package waitlist

import (
	"github.com/Nathankoth/waitlist-main-second/config/router"
	"github.com/Nathankoth/waitlist-main-second/internal/log"
	"gorm.io/gorm"
)

type WaitlistServiceFactory interface {
	CreateService() WaitlistService
	CreateController() *router.RESTController
}

type DefaultWaitlistServiceFactory struct {
	db     *gorm.DB
	logger *log.Logger
	cfg    *ControllerConfig
}

func NewWaitlistServiceFactory(db *gorm.DB, logger *log.Logger, cfg *ControllerConfig) WaitlistServiceFactory {
	return &DefaultWaitlistServiceFactory{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}
}

func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	repository := NewWaitlistRepository(f.db)
	return NewWaitlistService(f.logger, f.cfg.Rules, repository, f.cfg.Dispatcher)
}

func (f *DefaultWaitlistServiceFactory) CreateController() *router.RESTController {
	return NewWaitlistController(f.db, f.logger, f.cfg)
}
