package providers

import (
	"github.com/samber/do/v2"

	"github.com/pageturnapp/pageturn-server/internal/auth"
	"github.com/pageturnapp/pageturn-server/internal/logger"
	"github.com/pageturnapp/pageturn-server/internal/service"
	"github.com/pageturnapp/pageturn-server/internal/validation"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, v, log.Logger), nil
}

// ProvideBookService provides the book catalog service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, v, log.Logger), nil
}

// ProvideReadingService provides the reading session service.
func ProvideReadingService(i do.Injector) (*service.ReadingService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReadingService(storeHandle.Store, log.Logger), nil
}

// ProvideStatsService provides the reading statistics service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStatsService(storeHandle.Store, log.Logger), nil
}

// ProvideRefresherService provides the stats snapshot refresher.
func ProvideRefresherService(i do.Injector) (*service.RefresherService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	statsService := do.MustInvoke[*service.StatsService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRefresherService(storeHandle.Store, statsService, log.Logger), nil
}
