package domain

import "time"

// RateLimitScope identifies which public endpoint a limiter rule protects.
// Each scope keeps its own counters, so hitting the RSVP form never eats
// into the guestbook allowance of the same client.
type RateLimitScope string

const (
	RSVPScope      RateLimitScope = "rsvp"
	GuestbookScope RateLimitScope = "guestbook"
)

// RateLimitRule is the admission ceiling applied to one scope
type RateLimitRule struct {
	Scope       RateLimitScope `json:"scope"`
	Limit       int            `json:"limit"`
	Window      time.Duration  `json:"window"`
	Description string         `json:"description"`
}

// RateLimitRecord is the fixed-window counter kept per identifier
type RateLimitRecord struct {
	Key           string    `json:"key"`
	Count         int       `json:"count"`
	WindowResetAt time.Time `json:"windowResetAt"`
}

// Expired reports whether the window of the record has already passed.
// A record whose reset instant equals now is still inside its window.
func (r *RateLimitRecord) Expired(now time.Time) bool {
	return now.After(r.WindowResetAt)
}

// RateLimitResult is the decision returned for a single check
type RateLimitResult struct {
	Allowed   bool           `json:"allowed"`
	Limit     int            `json:"limit"`
	Remaining int            `json:"remaining"`
	ResetAt   time.Time      `json:"resetAt"`
	Scope     RateLimitScope `json:"scope"`
}

// Menu choices offered in the RSVP form
const (
	MenuMeat       = "Carne"
	MenuFish       = "Pescado"
	MenuVegetarian = "Vegetariano"
	MenuVegan      = "Vegano"
)

// Guest is a companion listed inside an RSVP
type Guest struct {
	Name string `json:"name" binding:"required,min=1"`
	Menu string `json:"menu,omitempty"`
}

// RSVP is an attendance confirmation. EditToken grants bearer access to the
// record until TokenExpiresAt; it is overwritten on every resubmission.
type RSVP struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Attending      bool       `json:"attending"`
	NumGuests      int        `json:"numGuests"`
	Guests         []Guest    `json:"guests"`
	Menu           string     `json:"menu,omitempty"`
	Allergies      string     `json:"allergies,omitempty"`
	HasChildren    bool       `json:"hasChildren"`
	NumChildren    int        `json:"numChildren"`
	SpecialNeeds   string     `json:"specialNeeds,omitempty"`
	Comments       string     `json:"comments,omitempty"`
	EditToken      string     `json:"-"`
	TokenExpiresAt time.Time  `json:"tokenExpiresAt"`
	IPHash         string     `json:"-"`
	UserAgent      string     `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
}

// SubmitRSVPInput is the public RSVP form
type SubmitRSVPInput struct {
	FirstName    string  `json:"firstName" binding:"required,min=1"`
	LastName     string  `json:"lastName" binding:"required,min=1"`
	Email        string  `json:"email" binding:"required,email"`
	Phone        string  `json:"phone"`
	Attending    *bool   `json:"attending" binding:"required"`
	NumGuests    int     `json:"numGuests" binding:"min=0"`
	Guests       []Guest `json:"guests" binding:"omitempty,dive"`
	Menu         string  `json:"menu" binding:"omitempty,oneof=Carne Pescado Vegetariano Vegano"`
	Allergies    string  `json:"allergies"`
	HasChildren  bool    `json:"hasChildren"`
	NumChildren  int     `json:"numChildren" binding:"min=0"`
	SpecialNeeds string  `json:"specialNeeds"`
	Comments     string  `json:"comments"`
	GDPRConsent  bool    `json:"gdprConsent" binding:"required"`
	Honeypot     string  `json:"honeypot"`
}

// RSVPPatch is a partial update; nil fields are left untouched
type RSVPPatch struct {
	FirstName    *string `json:"firstName" binding:"omitempty,min=1"`
	LastName     *string `json:"lastName" binding:"omitempty,min=1"`
	Phone        *string `json:"phone"`
	Attending    *bool   `json:"attending"`
	NumGuests    *int    `json:"numGuests" binding:"omitempty,min=0"`
	Guests       []Guest `json:"guests" binding:"omitempty,dive"`
	Menu         *string `json:"menu" binding:"omitempty,oneof=Carne Pescado Vegetariano Vegano"`
	Allergies    *string `json:"allergies"`
	HasChildren  *bool   `json:"hasChildren"`
	NumChildren  *int    `json:"numChildren" binding:"omitempty,min=0"`
	SpecialNeeds *string `json:"specialNeeds"`
	Comments     *string `json:"comments"`
}

// Apply copies every provided field of the patch into r
func (p *RSVPPatch) Apply(r *RSVP) {
	if p.FirstName != nil {
		r.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		r.LastName = *p.LastName
	}
	if p.Phone != nil {
		r.Phone = *p.Phone
	}
	if p.Attending != nil {
		r.Attending = *p.Attending
	}
	if p.NumGuests != nil {
		r.NumGuests = *p.NumGuests
	}
	if p.Guests != nil {
		r.Guests = p.Guests
	}
	if p.Menu != nil {
		r.Menu = *p.Menu
	}
	if p.Allergies != nil {
		r.Allergies = *p.Allergies
	}
	if p.HasChildren != nil {
		r.HasChildren = *p.HasChildren
	}
	if p.NumChildren != nil {
		r.NumChildren = *p.NumChildren
	}
	if p.SpecialNeeds != nil {
		r.SpecialNeeds = *p.SpecialNeeds
	}
	if p.Comments != nil {
		r.Comments = *p.Comments
	}
}

// RSVPFilter drives the admin listing
type RSVPFilter struct {
	Page      int
	Limit     int
	Search    string
	Attending *bool
	Menu      string
}

// Pagination describes one page of a listing
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// RSVPDailyCount is one bar of the per-day chart
type RSVPDailyCount struct {
	Date         string `json:"date"`
	Attending    int    `json:"attending"`
	NotAttending int    `json:"notAttending"`
}

// DashboardStats aggregates the numbers shown on the admin dashboard
type DashboardStats struct {
	TotalRSVPs        int              `json:"totalRSVPs"`
	AttendingRSVPs    int              `json:"attendingRSVPs"`
	NotAttendingRSVPs int              `json:"notAttendingRSVPs"`
	TotalGuests       int              `json:"totalGuests"`
	RecentRSVPs       int              `json:"recentRSVPs"`
	AttendanceRate    int              `json:"attendanceRate"`
	MenuStats         map[string]int   `json:"menuStats"`
	RSVPsByDate       []RSVPDailyCount `json:"rsvpsByDate"`
	GuestbookApproved int              `json:"guestbookMessages"`
	GuestbookPending  int              `json:"pendingMessages"`
	Settings          int              `json:"settings"`
}

// GuestbookEntry is a public message waiting for, or past, moderation
type GuestbookEntry struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Message    string     `json:"message"`
	Approved   bool       `json:"approved"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
	ApprovedBy *string    `json:"approvedBy,omitempty"`
	IPHash     string     `json:"-"`
	UserAgent  string     `json:"-"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty"`
}

// GuestbookInput is the public guestbook form
type GuestbookInput struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Message  string `json:"message" binding:"required,min=1,max=1000"`
	Honeypot string `json:"honeypot"`
}

// GuestbookStatus filters the admin moderation queue
type GuestbookStatus string

const (
	GuestbookPending  GuestbookStatus = "pending"
	GuestbookApproved GuestbookStatus = "approved"
	GuestbookAll      GuestbookStatus = "all"
)

// FAQ is a question shown on the public site
type FAQ struct {
	ID        string     `json:"id"`
	Question  string     `json:"question"`
	Answer    string     `json:"answer"`
	Order     int        `json:"order"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// FAQInput creates or edits a FAQ. Order is only honoured on edits.
type FAQInput struct {
	Question string `json:"question" binding:"required,min=1"`
	Answer   string `json:"answer" binding:"required,min=1"`
	Order    *int   `json:"order"`
}

// Setting is a key/value pair editable from the back-office
type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// User is a back-office account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SessionUser is the identity carried by an admin session
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Session is an issued admin session
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      SessionUser `json:"user"`
}

// RequestMeta carries the client data persisted alongside public submissions
type RequestMeta struct {
	IP        string
	UserAgent string
}

// ConfirmationEmail is the data rendered in the RSVP confirmation message
type ConfirmationEmail struct {
	FirstName string
	LastName  string
	Attending bool
	EditToken string
	ExpiresAt time.Time
}
