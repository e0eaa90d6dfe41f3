package model

// Identity is the resolved public identity of a commit email.
// Nil Username and Avatar after resolution mean "not found", which is final.
type Identity struct {
	Email    string  `yaml:"-" json:"email"`
	Username *string `yaml:"username" json:"username"`
	Avatar   *string `yaml:"avatar" json:"avatar"`
	// ProfileURL is the profile on the platform the username belongs to, may be empty
	ProfileURL string `yaml:"profile_url,omitempty" json:"profile_url,omitempty"`
}

// Found reports whether a username is known
func (i Identity) Found() bool {
	return i.Username != nil && *i.Username != ""
}

// Contribution is an author badge rendered on a page
type Contribution struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profile_url"`
	Changes    int    `json:"changes"`
	Avatar     string `json:"avatar"`
}

// DirectoryUser is a user found in a remote user directory
type DirectoryUser struct {
	Username   string
	AvatarURL  string
	ProfileURL string
}
