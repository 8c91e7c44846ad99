package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/types"
	"github.com/jacksonlee411/org-hierarchy/pkg/httperr"
	"github.com/jacksonlee411/org-hierarchy/pkg/reqctx"
)

const maxBodyBytes = 4 << 20

type HierarchyService interface {
	SolveHierarchy(ctx context.Context, edges []types.Edge) (types.Tree, error)
	GetSupervisors(ctx context.Context, name string) (types.Tree, error)
}

type HierarchyController struct {
	Service HierarchyService
}

type invalidEntryResponse struct {
	Error string `json:"error"`
	Data  string `json:"data"`
}

func (c HierarchyController) HandleSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_body", "request body unreadable or too large")
		return
	}
	var edges types.Edges
	if err := json.Unmarshal(body, &edges); err != nil {
		bad := decodeError(err)
		writeError(w, r, http.StatusBadRequest, httperr.CodeOf(bad), bad.Error())
		return
	}

	tree, err := c.Service.SolveHierarchy(r.Context(), edges)
	if err != nil {
		if invalid, ok := errors.AsType[*types.InvalidEntryError](err); ok {
			writeJSON(w, http.StatusBadRequest, invalidEntryResponse{Error: invalid.Message, Data: invalid.Entry})
			return
		}
		reqctx.Logger(r.Context()).WithError(err).Error("solve hierarchy failed")
		writeText(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, tree)
}

func (c HierarchyController) HandleSupervisors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	name := r.PathValue("name")
	if strings.TrimSpace(name) == "" {
		writeText(w, http.StatusBadRequest, "Bad request")
		return
	}

	tree, err := c.Service.GetSupervisors(r.Context(), name)
	if err != nil {
		switch {
		case types.IsNotFound(err):
			writeText(w, http.StatusNotFound, "Not found")
		case httperr.IsBadRequest(err):
			writeText(w, http.StatusBadRequest, "Bad request")
		default:
			reqctx.Logger(r.Context()).WithError(err).WithField("employee", name).Error("get supervisors failed")
			writeText(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func decodeError(err error) error {
	switch {
	case errors.Is(err, types.ErrEdgesNotObject):
		return httperr.NewBadRequestCode("invalid_hierarchy", err.Error())
	case errors.Is(err, types.ErrEdgeValueString), errors.Is(err, types.ErrEdgeEmptyName), errors.Is(err, types.ErrEdgeNULName):
		return httperr.NewBadRequestCode("invalid_employee_name", err.Error())
	default:
		return httperr.NewBadRequestCode("bad_json", "bad json")
	}
}
