package custodian

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/config"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Position is one holding reported by the custodian
type Position struct {
	Symbol      string
	Quantity    decimal.Decimal
	MarketValue decimal.Decimal
}

// Account is a custodial account mapped to a CRM entity
type Account struct {
	Number     string
	EntityType models.EntityType
	EntityID   string
	Positions  []Position
}

// Balance sums the market value of all positions
func (a Account) Balance() decimal.Decimal {
	total := decimal.Zero
	for _, p := range a.Positions {
		total = total.Add(p.MarketValue)
	}
	return total
}

// Statement is a parsed custodian position file
type Statement struct {
	Custodian string
	AsOf      time.Time
	Accounts  []Account
}

// Client pulls position files from a custodian feed
type Client struct {
	url    string
	apiKey string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new custodian feed client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url:    cfg.CustodianFeedURL,
		apiKey: cfg.CustodianAPIKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// Enabled reports whether a feed URL is configured
func (c *Client) Enabled() bool {
	return c.url != ""
}

// FetchStatement downloads and parses the current position file
func (c *Client) FetchStatement(ctx context.Context) (*Statement, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.log.Debugf("Custodian feed returned %d bytes", len(body))

	return ParsePositions(body)
}

// ParsePositions parses a position file of the form
//
//	<Positions custodian="schwab" asOf="2026-09-30">
//	  <Account number="..." entityType="account" entityId="...">
//	    <Position symbol="VTI" quantity="10" marketValue="2750.10"/>
//	  </Account>
//	</Positions>
func ParsePositions(raw []byte) (*Statement, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, apperr.Validation("body", "failed to parse XML: %v", err)
	}

	root := doc.SelectElement("Positions")
	if root == nil {
		return nil, apperr.Validation("body", "missing Positions element")
	}

	asOf, err := time.Parse("2006-01-02", root.SelectAttrValue("asOf", ""))
	if err != nil {
		return nil, apperr.Validation("asOf", "must be a YYYY-MM-DD date")
	}

	st := &Statement{
		Custodian: strings.ToLower(root.SelectAttrValue("custodian", "unknown")),
		AsOf:      asOf,
	}

	for i, el := range root.SelectElements("Account") {
		acct := Account{
			Number:     el.SelectAttrValue("number", ""),
			EntityType: models.EntityType(el.SelectAttrValue("entityType", string(models.EntityAccount))),
			EntityID:   el.SelectAttrValue("entityId", ""),
		}
		if acct.Number == "" {
			return nil, apperr.Validation(fmt.Sprintf("Account[%d].number", i), "is required")
		}
		if !acct.EntityType.Valid() {
			return nil, apperr.Validation(fmt.Sprintf("Account[%d].entityType", i), "unknown entity type %q", acct.EntityType)
		}
		if acct.EntityID == "" {
			return nil, apperr.Validation(fmt.Sprintf("Account[%d].entityId", i), "is required")
		}

		for j, pe := range el.SelectElements("Position") {
			field := fmt.Sprintf("Account[%d].Position[%d]", i, j)
			mv, err := decimal.NewFromString(pe.SelectAttrValue("marketValue", ""))
			if err != nil {
				return nil, apperr.Validation(field+".marketValue", "must be a number")
			}
			qty, err := decimal.NewFromString(pe.SelectAttrValue("quantity", "0"))
			if err != nil {
				return nil, apperr.Validation(field+".quantity", "must be a number")
			}
			acct.Positions = append(acct.Positions, Position{
				Symbol:      pe.SelectAttrValue("symbol", ""),
				Quantity:    qty,
				MarketValue: mv,
			})
		}
		if acct.Balance().IsNegative() {
			return nil, apperr.Validation(fmt.Sprintf("Account[%d].marketValue", i), "total market value must not be negative")
		}
		st.Accounts = append(st.Accounts, acct)
	}

	return st, nil
}
