package attendant

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CallService/entity"
	"CallService/internal/lib/api/response"
)

type fakeCore struct {
	created    *entity.Attendant
	attendants []entity.Attendant
}

func (f *fakeCore) CreateAttendant(_ context.Context, attendant *entity.Attendant) (*entity.Attendant, error) {
	cp := *attendant
	cp.AttendantID = 10
	f.created = &cp
	return &cp, nil
}

func (f *fakeCore) Attendants(_ context.Context) ([]entity.Attendant, error) {
	return f.attendants, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAddAttendant(t *testing.T) {
	core := &fakeCore{}
	handler := AddAttendant(discardLogger(), core)

	body, _ := json.Marshal(entity.Attendant{
		ShortName:       "João",
		PhoneNumber:     "5521100",
		Wuid:            "5521100@w",
		CompanySectorID: 50,
	})
	r := httptest.NewRequest("POST", "/attendant/create", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler(w, r)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, response.StatusOK, resp.Status)
	require.NotNil(t, core.created)
	assert.Equal(t, entity.AttendantActive, core.created.Status, "status defaults to ACTIVE")
}

func TestAddAttendantRejectsIncomplete(t *testing.T) {
	core := &fakeCore{}
	handler := AddAttendant(discardLogger(), core)

	body, _ := json.Marshal(entity.Attendant{ShortName: "João"})
	r := httptest.NewRequest("POST", "/attendant/create", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler(w, r)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, response.StatusError, resp.Status)
	assert.Nil(t, core.created)
}

func TestListAttendants(t *testing.T) {
	core := &fakeCore{attendants: []entity.Attendant{
		{AttendantID: 1, ShortName: "João"},
		{AttendantID: 2, ShortName: "Rita"},
	}}
	handler := ListAttendants(discardLogger(), core)

	r := httptest.NewRequest("GET", "/attendant", nil)
	w := httptest.NewRecorder()
	handler(w, r)

	var resp struct {
		Status string             `json:"status"`
		Data   []entity.Attendant `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, response.StatusOK, resp.Status)
	assert.Len(t, resp.Data, 2)
}
