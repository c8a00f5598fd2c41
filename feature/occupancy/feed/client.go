package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// TimeLayout is the fixed timestamp format used by the external system.
const TimeLayout = "02.01.2006 15:04:05"

const methodHospitalDocuments = "GetHospitalDocuments"

var (
	// ErrUnavailable indicates a transport failure or a non-success response
	// from the external system. The pass is aborted; retrying is safe.
	ErrUnavailable = errors.New("feed unavailable")

	// ErrFormat indicates the response payload could not be decoded.
	ErrFormat = errors.New("feed format error")
)

// Document is one typed entry of the occupancy snapshot.
type Document struct {
	DocumentID     string
	BranchID       string
	RoomID         string
	RoomName       string
	ClientID       string
	ClientName     string
	BedID          string
	BedName        string
	Start          time.Time
	End            *time.Time
	DepartmentID   string
	DepartmentName string
}

// request is the body of a dictionary-data call.
type request struct {
	Key    string `json:"Key"`
	Method string `json:"Method"`
}

// rawDocument mirrors the wire field names of the external system.
type rawDocument struct {
	Document       string `json:"Документ"`
	Branch         string `json:"Филиал"`
	Room           string `json:"Палата"`
	RoomName       string `json:"ПалатаНаименование"`
	Client         string `json:"Клиент"`
	ClientName     string `json:"КлиентНаименование"`
	Bed            string `json:"КойкоМесто"`
	BedName        string `json:"КойкоМестоНаименование"`
	StartDate      string `json:"ДатаНачала"`
	EndDate        string `json:"ДатаОкончания"`
	Department     string `json:"Подразделение"`
	DepartmentName string `json:"ПодразделениеНаименование"`
}

type envelope struct {
	Answer struct {
		HospitalClients []rawDocument `json:"КлиентыСтационара"`
	} `json:"Ответ"`
}

// Client retrieves point-in-time occupancy snapshots from the external system.
// It has no local side effects beyond the network call, so a failed fetch can
// always be retried.
type Client struct {
	http   *resty.Client
	url    string
	key    string
	logger *zap.Logger
}

// NewClient creates a feed client from the configuration. The base URL and
// installation key come from config rather than package state, so tests can
// point the client at a local server.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	http := resty.New().
		SetTimeout(time.Duration(timeout) * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if cfg.AuthHeader != "" {
		http.SetHeader("Authorization", cfg.AuthHeader)
	}

	return &Client{
		http:   http,
		url:    cfg.BaseURL,
		key:    cfg.Key,
		logger: logger,
	}
}

// FetchDocuments performs one snapshot fetch. It returns the typed documents
// together with the raw response payload (for the snapshot archive).
//
// A record missing a required field or carrying an unparsable timestamp is
// logged and skipped instead of failing the whole snapshot; one bad entry
// must not block the rest of the facility from syncing.
func (c *Client) FetchDocuments(ctx context.Context) ([]Document, []byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(request{Key: c.key, Method: methodHospitalDocuments}).
		Post(c.url)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return nil, nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode())
	}

	raw := resp.Body()

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	entries := env.Answer.HospitalClients
	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		doc, err := mapDocument(entry)
		if err != nil {
			c.logger.Warn("Skipping malformed feed record",
				zap.String("document", entry.Document),
				zap.String("client", entry.Client),
				zap.Error(err),
			)
			continue
		}
		docs = append(docs, doc)
	}

	c.logger.Info("Fetched occupancy snapshot",
		zap.Int("records", len(entries)),
		zap.Int("accepted", len(docs)),
	)

	return docs, raw, nil
}

// mapDocument converts a wire record into a typed Document, validating the
// fields the reconciliation engine cannot work without.
func mapDocument(r rawDocument) (Document, error) {
	if r.Client == "" {
		return Document{}, fmt.Errorf("%w: missing client id", ErrFormat)
	}
	if r.Room == "" {
		return Document{}, fmt.Errorf("%w: missing room id", ErrFormat)
	}
	if r.Bed == "" {
		return Document{}, fmt.Errorf("%w: missing bed id", ErrFormat)
	}
	if r.StartDate == "" {
		return Document{}, fmt.Errorf("%w: missing start date", ErrFormat)
	}

	start, err := time.Parse(TimeLayout, r.StartDate)
	if err != nil {
		return Document{}, fmt.Errorf("%w: bad start date %q", ErrFormat, r.StartDate)
	}

	var end *time.Time
	if r.EndDate != "" {
		parsed, err := time.Parse(TimeLayout, r.EndDate)
		if err != nil {
			return Document{}, fmt.Errorf("%w: bad end date %q", ErrFormat, r.EndDate)
		}
		end = &parsed
	}

	return Document{
		DocumentID:     r.Document,
		BranchID:       r.Branch,
		RoomID:         r.Room,
		RoomName:       strings.TrimSpace(r.RoomName),
		ClientID:       r.Client,
		ClientName:     r.ClientName,
		BedID:          r.Bed,
		BedName:        strings.TrimSpace(r.BedName),
		Start:          start,
		End:            end,
		DepartmentID:   r.Department,
		DepartmentName: r.DepartmentName,
	}, nil
}
