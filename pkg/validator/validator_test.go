package validator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineItem struct {
	Name  string `json:"name" validate:"required"`
	Price int64  `json:"price" validate:"gte=0"`
}

type bookingRequest struct {
	ShopID string     `json:"shop_id" validate:"required,uuid"`
	Date   string     `json:"date" validate:"required,calendar_date"`
	Time   string     `json:"time" validate:"required,timeslot"`
	Items  []lineItem `json:"items" validate:"required,min=1,dive"`
}

func validRequest() bookingRequest {
	return bookingRequest{
		ShopID: "8f5a1d8e-3a1b-4d0e-9b7c-1e2f3a4b5c6d",
		Date:   "2025-12-01",
		Time:   "10:00",
		Items:  []lineItem{{Name: "full grooming", Price: 50000}},
	}
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(validRequest()))
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	req := validRequest()
	req.ShopID = ""
	req.Time = "9:00"

	err := Validate(req)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["shop_id"])
	assert.Equal(t, "must be a time in HH:MM format", fields["time"])
}

func TestValidate_EmptyItems(t *testing.T) {
	req := validRequest()
	req.Items = []lineItem{}

	var valErr *ValidationError
	require.ErrorAs(t, Validate(req), &valErr)
	assert.Equal(t, "must contain at least 1 entries", valErr.Fields()["items"])
}

func TestValidate_DivesIntoItems(t *testing.T) {
	req := validRequest()
	req.Items = []lineItem{{Name: "", Price: -1}}

	var valErr *ValidationError
	require.ErrorAs(t, Validate(req), &valErr)
	assert.Contains(t, valErr.Fields(), "name")
	assert.Contains(t, valErr.Fields(), "price")
}

func TestIsTimeSlot(t *testing.T) {
	for _, ok := range []string{"00:00", "10:00", "22:30", "23:59"} {
		assert.True(t, IsTimeSlot(ok), ok)
	}
	for _, bad := range []string{"", "9:00", "24:00", "10:60", "10-00", "10:00:00", "ten"} {
		assert.False(t, IsTimeSlot(bad), bad)
	}
}

func TestIsCalendarDate(t *testing.T) {
	assert.True(t, IsCalendarDate("2025-12-01"))
	assert.True(t, IsCalendarDate("2024-02-29"))
	assert.False(t, IsCalendarDate("2025-02-29"))
	assert.False(t, IsCalendarDate("2025-1-1"))
	assert.False(t, IsCalendarDate("01/12/2025"))
}

func TestValidationError_Message(t *testing.T) {
	req := validRequest()
	req.Date = "tomorrow"

	err := Validate(req)
	require.Error(t, err)
	assert.Equal(t, "field 'date' must be a date in YYYY-MM-DD format", err.Error())
}

func TestDecodeAndValidate(t *testing.T) {
	body := `{"shop_id":"8f5a1d8e-3a1b-4d0e-9b7c-1e2f3a4b5c6d","date":"2025-12-01","time":"10:30","items":[{"name":"bath","price":20000}]}`
	r := httptest.NewRequest("POST", "/", strings.NewReader(body))

	var dst bookingRequest
	require.NoError(t, DecodeAndValidate(r, &dst))
	assert.Equal(t, "10:30", dst.Time)
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader("{"))

	var dst bookingRequest
	err := DecodeAndValidate(r, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
