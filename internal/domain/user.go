package domain

// User is a target-side account that vendor users are bound to.
type User struct {
	ID       int64  `yaml:"id" json:"id"`
	FullName string `yaml:"full_name" json:"full_name"`
	Email    string `yaml:"email,omitempty" json:"email,omitempty"`
}
