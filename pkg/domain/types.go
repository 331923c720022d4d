package domain

import "time"

// EmailApproach selects the tone of the generated outreach email.
type EmailApproach string

const (
	ApproachAggressive   EmailApproach = "aggressive"
	ApproachFriendly     EmailApproach = "friendly"
	ApproachProfessional EmailApproach = "professional"
	ApproachCustom       EmailApproach = "custom"
)

// User is a registered account. The password is stored as entered;
// credential hashing is out of scope for this system and a production
// deployment must not reuse this store as-is.
type User struct {
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// CompanyProfile describes the prospecting company and its targeting
// criteria. CustomEmailPrompt is meaningful only when EmailApproach is
// ApproachCustom.
type CompanyProfile struct {
	Sector            string        `json:"sector"`
	Size              string        `json:"size"`
	CoreSolution      string        `json:"coreSolution"`
	ICP               string        `json:"icp"`
	Channels          string        `json:"channels"`
	LinkedInProfile   string        `json:"linkedinProfile,omitempty"`
	TwitterProfile    string        `json:"twitterProfile,omitempty"`
	Country           string        `json:"country"`
	TargetAudience    string        `json:"targetAudience"`
	EmailApproach     EmailApproach `json:"emailApproach"`
	CustomEmailPrompt string        `json:"customEmailPrompt,omitempty"`
}

// SavedProfile is a named CompanyProfile owned by exactly one user.
type SavedProfile struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Profile CompanyProfile `json:"profile"`
}

// LeadReport holds the facts the AI backend found for one prospect.
// Every value is an untrusted string; a field the backend could not
// verify arrives empty.
type LeadReport struct {
	CompanyName    string `json:"companyName"`
	BusinessSector string `json:"businessSector"`
	KeyContact     string `json:"keyContact"`
	ContactNumber  string `json:"contactNumber"`
	CompanyWebsite string `json:"companyWebsite"`
	DigitalStatus  string `json:"digitalStatus"`
	EmailContact   string `json:"emailContact,omitempty"`
}

// Lead pairs a prospect report with its generated outreach email.
type Lead struct {
	Report LeadReport `json:"report"`
	Email  string     `json:"email"`
}
