package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ducttapeprodigy/boilerplate/internal/fixture"
	"github.com/ducttapeprodigy/boilerplate/internal/log"
	"github.com/ducttapeprodigy/boilerplate/internal/model"
)

// generateFixtures handles GET /fixtures?roots=&depth=&children=&seed=&format=
func (h *Handler) generateFixtures(w http.ResponseWriter, r *http.Request, user *model.User) {
	query := r.URL.Query()

	format, err := fixture.ParseFormat(query.Get("format"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	params, err := fixture.ParseParams(query.Get, fixture.DefaultParams())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	start := time.Now()
	records, err := params.Generate(fixture.WithMaxRecords(h.maxRecords))
	h.metrics.ObserveFixture("api", len(records), time.Since(start), err)
	if err != nil {
		if errors.Is(err, fixture.ErrInvalidArgument) || errors.Is(err, fixture.ErrTooManyRecords) {
			h.writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
			return
		}
		h.internalError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := fixture.Encode(&buf, records, format); err != nil {
		h.internalError(w, r, err)
		return
	}

	log.Debug("Fixtures generated", "user", user.Username, "records", len(records), "format", format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Fixture-Records", strconv.Itoa(len(records)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
