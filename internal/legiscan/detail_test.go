package legiscan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/billt/internal/model"
)

func detailJSON(status int) string {
	return `{"status":"OK","bill":{"state_link":"https://leginfo.example","status":` +
		string(rune('0'+status)) + `,"status_date":"2023-05-01","description":"desc"}}`
}

func TestGetBill(t *testing.T) {
	api := newFakeAPI(t)
	api.bills[10] = detailJSON(4)

	c := newTestClient(t, api, Options{})
	detail, err := c.GetBill(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPassed, detail.Status)
	assert.Equal(t, "2023-05-01", detail.StatusDate)
}

func TestGetBill_Failure(t *testing.T) {
	api := newFakeAPI(t)
	api.bills[11] = `{"status":"OK","bill":{"status":"passed"}}`

	c := newTestClient(t, api, Options{})

	_, err := c.GetBill(context.Background(), 11)
	var derr *DetailError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, 11, derr.BillID)

	_, err = c.GetBill(context.Background(), 12)
	require.True(t, errors.As(err, &derr))
	var terr *TransportError
	assert.True(t, errors.As(err, &terr), "transport failure is wrapped")
}

func TestEnrich_IsolatesFailures(t *testing.T) {
	api := newFakeAPI(t)
	api.bills[1] = detailJSON(1)
	api.bills[3] = detailJSON(6)

	bills := []model.Bill{{BillID: 1, Relevance: 9}, {BillID: 2, Relevance: 8}, {BillID: 3, Relevance: 7}}

	c := newTestClient(t, api, Options{Concurrency: 3})
	results := c.Enrich(context.Background(), bills)
	require.Len(t, results, 3)

	assert.Equal(t, 1, results[0].Bill.BillID)
	require.NotNil(t, results[0].Detail)
	assert.Equal(t, model.StatusIntroduced, results[0].Detail.Status)
	assert.NoError(t, results[0].Err)

	assert.Equal(t, 2, results[1].Bill.BillID)
	assert.Nil(t, results[1].Detail)
	assert.Error(t, results[1].Err)

	assert.Equal(t, 3, results[2].Bill.BillID)
	require.NotNil(t, results[2].Detail)
	assert.Equal(t, model.StatusFailed, results[2].Detail.Status)
}
