package custodian

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/config"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="utf-8"?>
<Positions custodian="Schwab" asOf="2026-09-30">
	<Account number="4471009312" entityType="household" entityId="h-1">
		<Position symbol="VTI" quantity="1000" marketValue="275010.25"/>
		<Position symbol="BND" quantity="5000" marketValue="362500"/>
	</Account>
	<Account number="4471009313" entityId="a-2">
		<Position symbol="CASH" marketValue="1200.5"/>
	</Account>
</Positions>`

func TestParsePositions(t *testing.T) {
	st, err := ParsePositions([]byte(sampleFeed))
	require.NoError(t, err)

	assert.Equal(t, "schwab", st.Custodian)
	assert.Equal(t, time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC), st.AsOf)
	require.Len(t, st.Accounts, 2)

	assert.Equal(t, models.EntityHousehold, st.Accounts[0].EntityType)
	assert.Equal(t, "637510.25", st.Accounts[0].Balance().String())
	assert.Equal(t, models.EntityAccount, st.Accounts[1].EntityType)
	assert.Equal(t, "1200.5", st.Accounts[1].Balance().String())
}

func TestParsePositionsRejects(t *testing.T) {
	cases := map[string]string{
		"malformed":    `<Positions`,
		"wrong root":   `<Holdings asOf="2026-09-30"/>`,
		"bad date":     `<Positions asOf="30/09/2026"/>`,
		"no number":    `<Positions asOf="2026-09-30"><Account entityId="a"/></Positions>`,
		"bad entity":   `<Positions asOf="2026-09-30"><Account number="1" entityType="team" entityId="a"/></Positions>`,
		"bad value":    `<Positions asOf="2026-09-30"><Account number="1" entityId="a"><Position marketValue="lots"/></Account></Positions>`,
		"no entity id": `<Positions asOf="2026-09-30"><Account number="1"/></Positions>`,
		"negative total": `<Positions asOf="2026-09-30">` +
			`<Account number="1" entityId="a-1"><Position marketValue="100"/></Account>` +
			`<Account number="2" entityId="a-2"><Position marketValue="-50"/></Account></Positions>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePositions([]byte(body))
			assert.True(t, apperr.IsValidation(err), "got %v", err)
		})
	}
}

func TestFetchStatement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "k-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, sampleFeed)
	}))
	defer srv.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c := NewClient(&config.Config{CustodianFeedURL: srv.URL, CustodianAPIKey: "k-123"}, logger)
	require.True(t, c.Enabled())
	st, err := c.FetchStatement(context.Background())
	require.NoError(t, err)
	assert.Len(t, st.Accounts, 2)

	bad := NewClient(&config.Config{CustodianFeedURL: srv.URL}, logger)
	_, err = bad.FetchStatement(context.Background())
	assert.ErrorContains(t, err, "unexpected status code: 401")
}
