package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

const discordMeURL = "https://discord.com/api/users/@me"

// DiscordUser is the subset of the Discord profile used to register club users.
type DiscordUser struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	GlobalName *string `json:"global_name"`
}

// DisplayName prefers the global display name over the account handle.
func (u *DiscordUser) DisplayName() string {
	if u.GlobalName != nil {
		if name := strings.TrimSpace(*u.GlobalName); name != "" {
			return name
		}
	}
	return u.Username
}

func (a *API) getDiscordUser(ctx context.Context, token *oauth2.Token) (*DiscordUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discordMeURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "pokerclub/1.0 (+https://github.com/susu3304/pokerclub)")
	req.Header.Set("Accept", "application/json")

	// The oauth2 client attaches the bearer token and refreshes it if needed.
	resp, err := a.oauthConfig.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch discord profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord API returned status %d", resp.StatusCode)
	}

	var user DiscordUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode discord profile: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("discord profile has no id")
	}
	return &user, nil
}
