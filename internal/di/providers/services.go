package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/marginalia-app/marginalia-server/internal/logger"
	"github.com/marginalia-app/marginalia-server/internal/service"
	"github.com/marginalia-app/marginalia-server/internal/store"
)

// ProvideBookStore provides the in-memory book store.
func ProvideBookStore(i do.Injector) (*store.BookStore, error) {
	adapterHandle := do.MustInvoke[*AdapterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return store.NewBookStore(adapterHandle.Adapter, log.Logger), nil
}

// ProvideInsightStore provides the in-memory insight store.
func ProvideInsightStore(i do.Injector) (*store.InsightStore, error) {
	adapterHandle := do.MustInvoke[*AdapterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return store.NewInsightStore(adapterHandle.Adapter, log.Logger), nil
}

// ProvideLibrary provides the library coordinator, loaded from durable storage.
func ProvideLibrary(i do.Injector) (*service.Library, error) {
	books := do.MustInvoke[*store.BookStore](i)
	insights := do.MustInvoke[*store.InsightStore](i)
	adapterHandle := do.MustInvoke[*AdapterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	library := service.NewLibrary(books, insights, adapterHandle.Adapter, log.Logger)
	if err := library.Initialize(context.Background()); err != nil {
		return nil, err
	}

	return library, nil
}
