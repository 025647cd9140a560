package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/color-game/contest/colors"
	"github.com/color-game/contest/ledger"
	"github.com/color-game/contest/models"
	"github.com/color-game/contest/scoring"
)

const maxImportBytes = 32 << 20

// splitList parses a comma separated query value, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GET /v1/admin/entries?tags=a,b&match=any|all or ?untagged=true
func (app *Application) listEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireGetMethod(w, r, ErrGET)
		return
	}

	query := r.URL.Query()
	if untagged, _ := strconv.ParseBool(query.Get("untagged")); untagged {
		writeJSON(w, http.StatusOK, app.Ledger.UntaggedEntries())
		return
	}

	tags := splitList(query.Get("tags"))
	switch query.Get("match") {
	case "", "any":
		writeJSON(w, http.StatusOK, app.Ledger.FilterByAnyTag(tags))
	case "all":
		writeJSON(w, http.StatusOK, app.Ledger.FilterByAllTags(tags))
	default:
		app.badRequest(w, r, fmt.Errorf("match must be any or all, got %q", query.Get("match")))
	}
}

func (app *Application) referenceResponse() models.ReferenceColorResponse {
	ref := app.Ledger.ReferenceColor()
	if ref == nil {
		return models.ReferenceColorResponse{}
	}
	description := colors.Describe(*ref, app.Palette)
	return models.ReferenceColorResponse{Color: ref, Description: &description}
}

// GET|PUT|DELETE /v1/admin/reference
func (app *Application) referenceColor(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, app.referenceResponse())
	case http.MethodPut:
		var req models.ColorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			app.badJSONRequest(w, r, err)
			return
		}
		sample, err := sampleFromRequest(req)
		if err != nil {
			app.badRequest(w, r, err)
			return
		}
		if err := app.Ledger.SetReferenceColor(r.Context(), &sample); err != nil {
			app.internalServerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, app.referenceResponse())
	case http.MethodDelete:
		if err := app.Ledger.SetReferenceColor(r.Context(), nil); err != nil {
			app.internalServerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, app.referenceResponse())
	default:
		app.requirePutMethod(w, r, ErrPUT)
	}
}

// GET /v1/admin/ranking?metric=oklab|ciede2000&tags=a,b
func (app *Application) getRanking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireGetMethod(w, r, ErrGET)
		return
	}

	metric := app.Metric
	if name := r.URL.Query().Get("metric"); name != "" {
		parsed, err := colors.ParseMetric(name)
		if err != nil {
			app.badRequest(w, r, err)
			return
		}
		metric = parsed
	}

	state := app.Ledger.Snapshot()
	entries := ledger.FilterByAnyTag(state.Entries, splitList(r.URL.Query().Get("tags")))
	writeJSON(w, http.StatusOK, models.RankingResponse{
		ReferenceColor: state.ReferenceColor,
		Metric:         string(metric),
		Entries:        scoring.Rank(entries, state.ReferenceColor, metric),
	})
}

// GET /v1/admin/tags
func (app *Application) listTags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireGetMethod(w, r, ErrGET)
		return
	}
	writeJSON(w, http.StatusOK, app.Ledger.TagStats())
}

// tagMutation runs op and reports whether it changed the ledger
func (app *Application) tagMutation(w http.ResponseWriter, r *http.Request, op func() (bool, error)) {
	changed, err := op()
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.TagMutationResponse{
		Changed: changed,
		Tags:    app.Ledger.TagStats(),
	})
}

func (app *Application) decodeTagRequest(w http.ResponseWriter, r *http.Request) (models.TagRequest, bool) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r, ErrPOST)
		return models.TagRequest{}, false
	}
	var req models.TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.badJSONRequest(w, r, err)
		return models.TagRequest{}, false
	}
	return req, true
}

// POST /v1/admin/tags/create
func (app *Application) createTag(w http.ResponseWriter, r *http.Request) {
	req, ok := app.decodeTagRequest(w, r)
	if !ok {
		return
	}
	app.tagMutation(w, r, func() (bool, error) {
		return app.Ledger.CreateTag(r.Context(), req.Name)
	})
}

// POST /v1/admin/tags/delete
func (app *Application) deleteTag(w http.ResponseWriter, r *http.Request) {
	req, ok := app.decodeTagRequest(w, r)
	if !ok {
		return
	}
	app.tagMutation(w, r, func() (bool, error) {
		return app.Ledger.DeleteTag(r.Context(), req.Name)
	})
}

// POST /v1/admin/tags/rename
func (app *Application) renameTag(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r, ErrPOST)
		return
	}
	var req models.RenameTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.badJSONRequest(w, r, err)
		return
	}
	app.tagMutation(w, r, func() (bool, error) {
		return app.Ledger.RenameTag(r.Context(), req.Old, req.New)
	})
}

func (app *Application) decodeEntryTags(w http.ResponseWriter, r *http.Request) (models.EntryTagsRequest, bool) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r, ErrPOST)
		return models.EntryTagsRequest{}, false
	}
	var req models.EntryTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.badJSONRequest(w, r, err)
		return models.EntryTagsRequest{}, false
	}
	return req, true
}

// POST /v1/admin/entries/tags/add
func (app *Application) addEntryTags(w http.ResponseWriter, r *http.Request) {
	req, ok := app.decodeEntryTags(w, r)
	if !ok {
		return
	}
	app.tagMutation(w, r, func() (bool, error) {
		return app.Ledger.AddTagsToEntries(r.Context(), req.IDs, req.Tags)
	})
}

// POST /v1/admin/entries/tags/remove
func (app *Application) removeEntryTags(w http.ResponseWriter, r *http.Request) {
	req, ok := app.decodeEntryTags(w, r)
	if !ok {
		return
	}
	app.tagMutation(w, r, func() (bool, error) {
		return app.Ledger.RemoveTagsFromEntries(r.Context(), req.IDs, req.Tags)
	})
}

// GET /v1/admin/export?includeTags=true&tags=a,b
func (app *Application) exportEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireGetMethod(w, r, ErrGET)
		return
	}

	query := r.URL.Query()
	includeTags := true
	if raw := query.Get("includeTags"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			app.badRequest(w, r, fmt.Errorf("includeTags must be a boolean: %w", err))
			return
		}
		includeTags = parsed
	}

	buf, err := app.Ledger.ExportFilteredEntries(splitList(query.Get("tags")), includeTags)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	filename := ledger.ExportFilename(app.now())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf)
}

// POST /v1/admin/import?mode=append|replace with the export file as body
func (app *Application) importEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r, ErrPOST)
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "append"
	}
	if mode != "append" && mode != "replace" {
		app.badRequest(w, r, fmt.Errorf("mode must be append or replace, got %q", mode))
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		app.badRequest(w, r, fmt.Errorf("failed to read import body: %w", err))
		return
	}

	var result models.ImportResult
	if mode == "replace" {
		result = app.Ledger.ReplaceAllEntries(r.Context(), data)
	} else {
		result = app.Ledger.ImportEntries(r.Context(), data)
	}
	app.Metrics.observeImport(mode, result)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}

// POST /v1/admin/reset
func (app *Application) resetContest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r, ErrPOST)
		return
	}
	if err := app.Ledger.Reset(r.Context()); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.Logger.Warn("contest reset")
	w.WriteHeader(http.StatusNoContent)
}
