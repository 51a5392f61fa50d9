package service

import (
	"alcyxob/swimtrack/internal/domain"
	"alcyxob/swimtrack/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	stravaAuthURL  = "https://www.strava.com/oauth/authorize"
	stravaTokenURL = "https://www.strava.com/oauth/token"
	stravaBaseURL  = "https://www.strava.com/api/v3"
)

// Strava uses comma-separated scopes inside a single value.
var stravaScopes = []string{"read,activity:read_all"}

var (
	ErrStravaNotLinked      = errors.New("no strava credentials on profile")
	ErrStravaTokenMissing   = errors.New("no strava access token on profile")
	ErrStravaUpstreamFailed = errors.New("strava API request failed")
)

// StravaService drives the OAuth authorization-code exchange and the
// activity import against the Strava API, using the client credentials
// stored on each user's profile document.
type StravaService interface {
	AuthCodeURL(user *domain.User, state string) (string, error)
	Exchange(ctx context.Context, user *domain.User, code string) error
	SyncSessions(ctx context.Context, user *domain.User) (int, error)
	HRSamples(ctx context.Context, user *domain.User, activityID int64) ([]float64, error)
}

type stravaService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	redirectURL string
	log         zerolog.Logger
}

// NewStravaService creates a StravaService. redirectURL is the absolute
// callback URL derived from the environment configuration.
func NewStravaService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, redirectURL string, log zerolog.Logger) StravaService {
	return &stravaService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		redirectURL: redirectURL,
		log:         log.With().Str("component", "strava").Logger(),
	}
}

// oauthConfig builds an oauth2.Config from the per-user client credentials
// stored on the profile document.
func (s *stravaService) oauthConfig(user *domain.User) (*oauth2.Config, error) {
	if user.Strava == nil || user.Strava.ClientID == "" || user.Strava.ClientSecret == "" {
		return nil, ErrStravaNotLinked
	}
	return &oauth2.Config{
		ClientID:     user.Strava.ClientID,
		ClientSecret: user.Strava.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  stravaAuthURL,
			TokenURL: stravaTokenURL,
		},
		RedirectURL: s.redirectURL,
		Scopes:      stravaScopes,
	}, nil
}

// AuthCodeURL returns the provider authorize URL for the start endpoint.
func (s *stravaService) AuthCodeURL(user *domain.User, state string) (string, error) {
	conf, err := s.oauthConfig(user)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state), nil
}

// Exchange trades the authorization code for tokens and persists them back
// onto the profile document.
func (s *stravaService) Exchange(ctx context.Context, user *domain.User, code string) error {
	conf, err := s.oauthConfig(user)
	if err != nil {
		return err
	}
	token, err := conf.Exchange(ctx, code)
	if err != nil {
		s.log.Error().Err(err).Str("user", user.ID.Hex()).Msg("token exchange failed")
		return fmt.Errorf("%w: %v", ErrStravaUpstreamFailed, err)
	}

	creds := *user.Strava
	creds.AccessToken = token.AccessToken
	creds.RefreshToken = token.RefreshToken
	creds.Expiry = token.Expiry
	if err := s.userRepo.UpdateStrava(ctx, user.ID, &creds); err != nil {
		return err
	}
	user.Strava = &creds
	return nil
}

// httpClient returns an authenticated HTTP client whose token source
// refreshes expired access tokens. A refreshed token is written back to the
// profile document so the next session starts from it.
func (s *stravaService) httpClient(ctx context.Context, user *domain.User) (*http.Client, oauth2.TokenSource, error) {
	conf, err := s.oauthConfig(user)
	if err != nil {
		return nil, nil, err
	}
	if !user.HasStravaToken() {
		return nil, nil, ErrStravaTokenMissing
	}
	token := &oauth2.Token{
		AccessToken:  user.Strava.AccessToken,
		RefreshToken: user.Strava.RefreshToken,
		Expiry:       user.Strava.Expiry,
	}
	source := conf.TokenSource(ctx, token)
	return oauth2.NewClient(ctx, source), source, nil
}

// persistRefreshedToken writes the token back when the source rotated it.
func (s *stravaService) persistRefreshedToken(ctx context.Context, user *domain.User, source oauth2.TokenSource) {
	token, err := source.Token()
	if err != nil || token.AccessToken == user.Strava.AccessToken {
		return
	}
	creds := *user.Strava
	creds.AccessToken = token.AccessToken
	creds.RefreshToken = token.RefreshToken
	creds.Expiry = token.Expiry
	if err := s.userRepo.UpdateStrava(ctx, user.ID, &creds); err != nil {
		s.log.Warn().Err(err).Str("user", user.ID.Hex()).Msg("failed to persist refreshed token")
		return
	}
	user.Strava = &creds
}

// stravaActivity mirrors the fields of the summary activity payload we use.
type stravaActivity struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Distance     float64   `json:"distance"`
	MovingTime   int       `json:"moving_time"`
	ElapsedTime  int       `json:"elapsed_time"`
	StartDate    time.Time `json:"start_date"`
	AverageHR    *float64  `json:"average_heartrate"`
	MaxHR        *float64  `json:"max_heartrate"`
	HasHeartrate bool      `json:"has_heartrate"`
}

// SyncSessions pulls the athlete's swim activities page by page and upserts
// them into the session cache keyed by Strava activity id.
func (s *stravaService) SyncSessions(ctx context.Context, user *domain.User) (int, error) {
	client, source, err := s.httpClient(ctx, user)
	if err != nil {
		return 0, err
	}
	defer s.persistRefreshedToken(ctx, user, source)

	imported := 0
	page := 1
	const perPage = 100
	for {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(perPage))

		var activities []stravaActivity
		if err := s.getJSON(ctx, client, "/athlete/activities", params, &activities); err != nil {
			return imported, err
		}
		if len(activities) == 0 {
			break
		}

		for _, a := range activities {
			if a.Type != "Swim" {
				continue
			}
			session := &domain.StravaSession{
				ActivityID:  a.ID,
				UserEmail:   user.Email,
				Name:        a.Name,
				Distance:    a.Distance,
				MovingTime:  a.MovingTime,
				ElapsedTime: a.ElapsedTime,
				StartDate:   a.StartDate,
				AvgHR:       a.AverageHR,
				MaxHR:       a.MaxHR,
			}
			if err := s.sessionRepo.Upsert(ctx, session); err != nil {
				return imported, err
			}
			imported++
		}

		if len(activities) < perPage {
			break
		}
		page++
	}
	return imported, nil
}

// streamSet is the key_by_type stream response; only heartrate is requested.
type streamSet struct {
	Heartrate *struct {
		Data []float64 `json:"data"`
	} `json:"heartrate"`
}

// HRSamples fetches the heart-rate stream for one activity, one sample per
// second of recording.
func (s *stravaService) HRSamples(ctx context.Context, user *domain.User, activityID int64) ([]float64, error) {
	client, source, err := s.httpClient(ctx, user)
	if err != nil {
		return nil, err
	}
	defer s.persistRefreshedToken(ctx, user, source)

	params := url.Values{}
	params.Set("keys", "heartrate")
	params.Set("key_by_type", "true")

	var streams streamSet
	path := fmt.Sprintf("/activities/%d/streams", activityID)
	if err := s.getJSON(ctx, client, path, params, &streams); err != nil {
		return nil, err
	}
	if streams.Heartrate == nil {
		return nil, nil
	}
	return streams.Heartrate.Data, nil
}

func (s *stravaService) getJSON(ctx context.Context, client *http.Client, path string, params url.Values, out interface{}) error {
	reqURL := stravaBaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStravaUpstreamFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		s.log.Error().Int("status", resp.StatusCode).Str("path", path).Bytes("body", body).Msg("strava API error")
		return fmt.Errorf("%w: status %d", ErrStravaUpstreamFailed, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
