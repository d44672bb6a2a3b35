package models

import "github.com/desertthunder/spotx/internal/codec"

// User is the current user's profile. Country, Email, Product and ExplicitContent require the user-read-private and
// user-read-email scopes and are empty otherwise.
type User struct {
	Country         string          `json:"country"`
	DisplayName     string          `json:"display_name"`
	Email           string          `json:"email"`
	ExplicitContent ExplicitContent `json:"explicit_content"`
	ExternalURLs    ExternalURLs    `json:"external_urls"`
	Followers       Followers       `json:"followers"`
	Href            string          `json:"href"`
	ID              string          `json:"id"`
	Images          []Image         `json:"images"`
	Product         string          `json:"product"`
	Type            string          `json:"type"`
	URI             string          `json:"uri"`
}

func DecodeUser(o codec.Object) User {
	return User{
		Country:         o.String("country", ""),
		DisplayName:     o.String("display_name", ""),
		Email:           o.String("email", ""),
		ExplicitContent: codec.Nested(o, "explicit_content", DecodeExplicitContent),
		ExternalURLs:    codec.Nested(o, "external_urls", DecodeExternalURLs),
		Followers:       codec.Nested(o, "followers", DecodeFollowers),
		Href:            o.String("href", ""),
		ID:              o.String("id", ""),
		Images:          codec.Array(o, "images", DecodeImage),
		Product:         o.String("product", ""),
		Type:            o.String("type", ""),
		URI:             o.String("uri", ""),
	}
}
