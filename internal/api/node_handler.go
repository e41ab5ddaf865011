package api

import (
	"net/http"

	"github.com/shaiso/nodehub/internal/domain"
	"github.com/shaiso/nodehub/internal/query"
)

// ListNodes возвращает полные документы, опционально с точным displayName.
// GET /get-nodes?displayName=
func (h *Handler) ListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.service.ListRecords(r.Context(), r.URL.Query().Get("displayName"))
	if HandleRepoError(w, h.log(r), err) {
		return
	}
	if nodes == nil {
		nodes = []domain.Node{}
	}

	JSON(w, http.StatusOK, nodes)
}

// ListNodeNames возвращает страницу {id, displayName, iconUrl}.
// page и limit, не являющиеся целым числом >= 1 ("0", "-1", "2.5", "3abc"),
// заменяются значениями по умолчанию, ошибки 400 нет.
// GET /get-nodes-names?search=&page=&limit=
func (h *Handler) ListNodeNames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := query.ParsePositiveIntOr(q.Get("page"), query.DefaultPage)
	limit := query.ParsePositiveIntOr(q.Get("limit"), query.DefaultNamesPageSize)

	result, err := h.service.ListNames(r.Context(), q.Get("search"), page, limit)
	if HandleRepoError(w, h.log(r), err) {
		return
	}

	JSON(w, http.StatusOK, result)
}

// ListCredentialNames возвращает уникальные имена credentials.
// page и limit разбираются так же, как в ListNodeNames.
// GET /get-credentials-names?search=&page=&limit=
func (h *Handler) ListCredentialNames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := query.ParsePositiveIntOr(q.Get("page"), query.DefaultPage)
	limit := query.ParsePositiveIntOr(q.Get("limit"), query.DefaultCredentialsPageSize)

	names, err := h.service.ListCredentialNames(r.Context(), q.Get("search"), page, limit)
	if HandleRepoError(w, h.log(r), err) {
		return
	}

	JSON(w, http.StatusOK, names)
}

// GetNode возвращает {id, displayName, iconUrl} документа.
// GET /get-node/{id}
func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.service.GetRecord(r.Context(), r.PathValue("id"))
	if HandleRepoError(w, h.log(r), err) {
		return
	}

	JSON(w, http.StatusOK, node)
}
