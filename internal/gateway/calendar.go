// Package gateway holds the thin, stateless adapters to the external
// calendar and notes services. Adapters hold no cross-request state; every
// method is one request/response exchange.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"meetbot/internal/domain"
	"meetbot/internal/provider"
)

const calendarBaseURL = "https://www.googleapis.com/calendar/v3"

// googleEndpoint is Google's OAuth2 endpoint. Spelled out here instead of
// importing the google subpackage; token acquisition itself is out of scope,
// only the refresh-token exchange happens in-process.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// GoogleCalendar implements domain.CalendarGateway against the Google
// Calendar API. Event creation requests a Meet conference so the returned
// link is a real one, never a placeholder.
type GoogleCalendar struct {
	baseURL     string
	calendarID  string
	sendUpdates string
	timezone    string
	client      *http.Client
	logger      *slog.Logger
}

type GoogleCalendarConfig struct {
	CalendarID   string
	ClientID     string
	ClientSecret string
	RefreshToken string
	SendUpdates  string
	Timezone     string // IANA name sent with event times
	BaseURL      string // override for tests
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

func NewGoogleCalendar(ctx context.Context, cfg GoogleCalendarConfig) *GoogleCalendar {
	if cfg.BaseURL == "" {
		cfg.BaseURL = calendarBaseURL
	}
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	if cfg.SendUpdates == "" {
		cfg.SendUpdates = "all"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	client := cfg.HTTPClient
	if client == nil {
		oc := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     googleEndpoint,
			Scopes:       []string{"https://www.googleapis.com/auth/calendar"},
		}
		base := context.WithValue(ctx, oauth2.HTTPClient, provider.SharedHTTPClient(0))
		client = oauth2.NewClient(base, oc.TokenSource(base, &oauth2.Token{RefreshToken: cfg.RefreshToken}))
	}
	return &GoogleCalendar{
		baseURL:     cfg.BaseURL,
		calendarID:  cfg.CalendarID,
		sendUpdates: cfg.SendUpdates,
		timezone:    cfg.Timezone,
		client:      client,
		logger:      cfg.Logger,
	}
}

type calendarEventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type calendarEventRequest struct {
	Summary        string             `json:"summary"`
	Start          calendarEventTime  `json:"start"`
	End            calendarEventTime  `json:"end"`
	Attendees      []calendarAttendee `json:"attendees,omitempty"`
	ConferenceData *conferenceData    `json:"conferenceData,omitempty"`
}

type calendarAttendee struct {
	Email string `json:"email"`
}

type conferenceData struct {
	CreateRequest conferenceCreateRequest `json:"createRequest"`
}

type conferenceCreateRequest struct {
	RequestID             string            `json:"requestId"`
	ConferenceSolutionKey map[string]string `json:"conferenceSolutionKey"`
}

type calendarEventResponse struct {
	ID             string `json:"id"`
	HangoutLink    string `json:"hangoutLink"`
	ConferenceData struct {
		EntryPoints []struct {
			EntryPointType string `json:"entryPointType"`
			URI            string `json:"uri"`
		} `json:"entryPoints"`
	} `json:"conferenceData"`
}

func (g *GoogleCalendar) CreateEvent(ctx context.Context, req domain.EventRequest) (*domain.CreatedEvent, error) {
	body := calendarEventRequest{
		Summary: req.Title,
		Start: calendarEventTime{
			DateTime: req.Start.Format("2006-01-02T15:04:05-07:00"),
			TimeZone: g.timezone,
		},
		End: calendarEventTime{
			DateTime: req.Start.Add(req.Duration).Format("2006-01-02T15:04:05-07:00"),
			TimeZone: g.timezone,
		},
		Attendees: []calendarAttendee{{Email: req.AttendeeEmail}},
		ConferenceData: &conferenceData{
			CreateRequest: conferenceCreateRequest{
				RequestID:             uuid.NewString(),
				ConferenceSolutionKey: map[string]string{"type": "hangoutsMeet"},
			},
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events?conferenceDataVersion=1&sendUpdates=%s",
		g.baseURL, url.PathEscape(g.calendarID), url.QueryEscape(g.sendUpdates))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calendar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("calendar %d: %s", resp.StatusCode, string(respBody))
	}

	var event calendarEventResponse
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	link := event.HangoutLink
	if link == "" {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				link = ep.URI
				break
			}
		}
	}
	if link == "" {
		return nil, fmt.Errorf("event %s created without a conference link", event.ID)
	}

	g.logger.Info("calendar event created", "event", event.ID, "start", req.Start)
	return &domain.CreatedEvent{EventRef: event.ID, ConferenceLink: link}, nil
}
