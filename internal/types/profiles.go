package types

import (
	"time"

	"github.com/google/uuid"
)

// Profile is one-to-one with an identity. Experience and Education are
// ordered most-recent-first and are owned through the profile.
type Profile struct {
	ID             uuid.UUID    `json:"_id" bson:"_id"`
	UserID         uuid.UUID    `json:"-" bson:"user"`                    // Owner identity (unique).
	User           *UserSummary `json:"user,omitempty" bson:"-"`          // Populated owner on reads.
	Company        string       `json:"company,omitempty" bson:"company"` // Optional scalar fields are omitted when empty.
	Website        string       `json:"website,omitempty" bson:"website"`
	Location       string       `json:"location,omitempty" bson:"location"`
	Bio            string       `json:"bio,omitempty" bson:"bio"`
	Status         string       `json:"status" bson:"status"`
	GithubUsername string       `json:"githubusername,omitempty" bson:"githubusername"`
	Skills         []string     `json:"skills" bson:"skills"`
	Social         Social       `json:"social" bson:"social"`
	Experience     []Experience `json:"experience" bson:"experience"`
	Education      []Education  `json:"education" bson:"education"`
	CreatedAt      time.Time    `json:"date" bson:"date"`
	Version        int64        `json:"-" bson:"version"`
}

// Social holds the profile's social network links.
type Social struct {
	Youtube   string `json:"youtube,omitempty" bson:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty" bson:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty" bson:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty" bson:"instagram,omitempty"`
}

// Experience is a work history entry.
type Experience struct {
	ID          uuid.UUID  `json:"_id" bson:"_id"`
	Title       string     `json:"title" bson:"title"`
	Company     string     `json:"company" bson:"company"`
	Location    string     `json:"location,omitempty" bson:"location"`
	From        time.Time  `json:"from" bson:"from"`
	To          *time.Time `json:"to,omitempty" bson:"to,omitempty"`
	Current     bool       `json:"current" bson:"current"`
	Description string     `json:"description,omitempty" bson:"description"`
}

// Education is a school history entry.
type Education struct {
	ID           uuid.UUID  `json:"_id" bson:"_id"`
	School       string     `json:"school" bson:"school"`
	Degree       string     `json:"degree" bson:"degree"`
	FieldOfStudy string     `json:"fieldofstudy" bson:"fieldofstudy"`
	From         time.Time  `json:"from" bson:"from"`
	To           *time.Time `json:"to,omitempty" bson:"to,omitempty"`
	Current      bool       `json:"current" bson:"current"`
	Description  string     `json:"description,omitempty" bson:"description"`
}

// AddExperience inserts e at the front of the experience list.
func (p *Profile) AddExperience(e Experience) {
	p.Experience = append([]Experience{e}, p.Experience...)
}

// RemoveExperience removes the entry with id and reports whether it existed.
func (p *Profile) RemoveExperience(id uuid.UUID) bool {
	for i := range p.Experience {
		if p.Experience[i].ID == id {
			p.Experience = append(p.Experience[:i:i], p.Experience[i+1:]...)
			return true
		}
	}
	return false
}

// AddEducation inserts e at the front of the education list.
func (p *Profile) AddEducation(e Education) {
	p.Education = append([]Education{e}, p.Education...)
}

// RemoveEducation removes the entry with id and reports whether it existed.
func (p *Profile) RemoveEducation(id uuid.UUID) bool {
	for i := range p.Education {
		if p.Education[i].ID == id {
			p.Education = append(p.Education[:i:i], p.Education[i+1:]...)
			return true
		}
	}
	return false
}

// UpsertProfileParams is the body of POST /api/profile. Skills is a
// comma-separated list.
type UpsertProfileParams struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	Status         string `json:"status"`
	GithubUsername string `json:"githubusername"`
	Skills         string `json:"skills"`
	Youtube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	Linkedin       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// ExperienceParams is the body of PUT /api/profile/experience.
type ExperienceParams struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// EducationParams is the body of PUT /api/profile/education.
type EducationParams struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// ProfileList is the response body of GET /api/profile.
type ProfileList struct {
	Success bool       `json:"success"`
	Count   int        `json:"count"`
	Data    []*Profile `json:"data"`
}
