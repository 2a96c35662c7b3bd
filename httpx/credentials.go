package httpx

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/oauth"

	"github.com/mbolis/wellness-hub/config"
	"github.com/mbolis/wellness-hub/users"
)

// Claim names carried by access tokens.
const (
	ClaimUserID = "uid"
	ClaimRole   = "role"
)

const refreshTTL = 8760 * time.Hour

var errCouldNotRefresh = errors.New("could not refresh")

type credentialsVerifier struct {
	db    *sql.DB
	users *users.Store
}

func CredentialsVerifier(db *sql.DB, us *users.Store) oauth.CredentialsVerifier {
	return &credentialsVerifier{db, us}
}

func NewBearerServer(db *sql.DB, us *users.Store, cfg config.Config) *oauth.BearerServer {
	return oauth.NewBearerServer(cfg.TokenSecret, cfg.TokenTTL, CredentialsVerifier(db, us), nil)
}

func (cs *credentialsVerifier) ValidateUser(username string, password string, scope string, r *http.Request) error {
	return cs.users.CheckPassword(r.Context(), username, password)
}

func (cs *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	_, err := cs.db.Exec(
		"INSERT INTO token (username, token_id, refresh_token_id, expiration) VALUES ($1, $2, $3, $4)",
		credential,
		tokenID,
		refreshTokenID,
		time.Now().UTC().Add(refreshTTL),
	)
	return err
}

// ValidateTokenID consumes a refresh token: each one can be used once.
func (cs *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	res, err := cs.db.Exec(`
		DELETE FROM token
		WHERE username = $1
			AND token_id = $2
			AND refresh_token_id = $3
			AND expiration > $4`,
		credential,
		tokenID,
		refreshTokenID,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		return errCouldNotRefresh
	}
	return nil
}

func (cs *credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	caller, err := cs.users.Lookup(r.Context(), credential)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		ClaimUserID: strconv.FormatInt(caller.UserID, 10),
		ClaimRole:   string(caller.Role),
	}, nil
}

func (cs *credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	caller, err := cs.users.Lookup(r.Context(), credential)
	if err != nil {
		return nil, err
	}
	return map[string]string{ClaimRole: string(caller.Role)}, nil
}

func (*credentialsVerifier) ValidateClient(clientID string, clientSecret string, scope string, r *http.Request) error {
	return errors.New("not supported")
}
