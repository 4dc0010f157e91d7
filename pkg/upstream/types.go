package upstream

import "encoding/json"

// User is the canonical profile shape served by the API.
//
// Older API builds returned a minimal {id, email, first_name, last_name}
// view. Decoding tolerates that shape (missing fields stay zero); the
// full profile is authoritative and nothing re-encodes the minimal one.
type User struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Bio          *string `json:"bio"`
	PfpURL       *string `json:"pfp_url"`
	AddressLine1 *string `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Zip          *string `json:"zip"`
	Country      *string `json:"country"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// Note mirrors the API's note record.
type Note struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Filepath   string `json:"filepath"`
	IsFavorite bool   `json:"is_favorite"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// Folder mirrors the API's folder record. ParentFolderID is null for
// top-level folders.
type Folder struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Notes          []Note   `json:"notes"`
	ParentFolderID *int64   `json:"parent_folder_id"`
	Subfolders     []Folder `json:"subfolders,omitempty"`
}

// Envelope is the API's {key: value} response wrapper.
type Envelope map[string]json.RawMessage

// decodeUser accepts either a bare user object or one wrapped in a
// {"user": ...} envelope, which is how the API serves /users/me.
func decodeUser(body []byte) (*User, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if raw, ok := env["user"]; ok {
		var u User
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, err
		}
		return &u, nil
	}
	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
