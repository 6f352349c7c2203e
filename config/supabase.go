package config

import (
	"errors"
	"fmt"

	supa "github.com/supabase-community/supabase-go"
)

var SupabaseClient *supa.Client

var ErrSupabaseCredentials = errors.New("supabase url and service key must be set")

// InitSupabase creates the shared Supabase client.
func InitSupabase(url, serviceKey string) (*supa.Client, error) {
	if url == "" || serviceKey == "" {
		return nil, ErrSupabaseCredentials
	}
	client, err := supa.NewClient(url, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("error initializing Supabase client: %w", err)
	}
	SupabaseClient = client
	Component("supabase").Info("Supabase client initialized successfully.")
	return client, nil
}
