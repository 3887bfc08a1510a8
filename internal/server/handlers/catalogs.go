package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/pyrus-tasks/backend/internal/server/reshape"
	"github.com/pyrus-tasks/backend/pkg/api"
)

// CatalogsHandler отдает справочники, на которые ссылаются поля форм.
// Pyrus не дает списка всех справочников, поэтому множество известных
// справочников выводится сканированием структуры всех доступных форм.
type CatalogsHandler struct {
	logger  *slog.Logger
	gateway Gateway
}

// NewCatalogsHandler создает новый handler для справочников
func NewCatalogsHandler(logger *slog.Logger, gateway Gateway) *CatalogsHandler {
	return &CatalogsHandler{
		logger:  logger,
		gateway: gateway,
	}
}

// List обрабатывает GET /api/catalogs
func (h *CatalogsHandler) List(w http.ResponseWriter, r *http.Request) {
	client, ok := clientForRequest(h.logger, h.gateway, w, r)
	if !ok {
		return
	}

	catalogs, err := collectCatalogs(r.Context(), client)
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, catalogs, http.StatusOK)
}

// Get обрабатывает GET /api/catalogs/{id}
// Возвращает 404, если ни одна форма не ссылается на такой справочник
func (h *CatalogsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	catalogID, ok := pathID(h.logger, w, r, "id")
	if !ok {
		return
	}

	client, ok := clientForRequest(h.logger, h.gateway, w, r)
	if !ok {
		return
	}

	ids, err := referencedCatalogIDs(ctx, client)
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	if _, referenced := ids[catalogID]; !referenced {
		sendError(h.logger, w, "Справочник не найден", http.StatusNotFound)
		return
	}

	catalog, err := client.GetCatalog(ctx, catalogID)
	if err != nil {
		sendUpstreamError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, reshape.CatalogView(catalog), http.StatusOK)
}

// referencedCatalogIDs собирает ID справочников из полей всех форм
func referencedCatalogIDs(ctx context.Context, client PyrusAPI) (map[int]struct{}, error) {
	forms, err := client.GetForms(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(map[int]struct{})
	for _, form := range forms {
		for _, field := range form.Fields {
			if field.Type == "catalog" && field.Info != nil && field.Info.CatalogID != 0 {
				ids[field.Info.CatalogID] = struct{}{}
			}
		}
	}

	return ids, nil
}

// collectCatalogs загружает все справочники, на которые ссылаются формы.
// Порядок стабильный: по возрастанию ID справочника.
func collectCatalogs(ctx context.Context, client PyrusAPI) ([]api.CatalogView, error) {
	ids, err := referencedCatalogIDs(ctx, client)
	if err != nil {
		return nil, err
	}

	sorted := make([]int, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	slices.Sort(sorted)

	catalogs := make([]api.CatalogView, 0, len(sorted))
	for _, id := range sorted {
		catalog, err := client.GetCatalog(ctx, id)
		if err != nil {
			return nil, err
		}
		catalogs = append(catalogs, reshape.CatalogView(catalog))
	}

	return catalogs, nil
}
