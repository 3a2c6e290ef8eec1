package member

import "time"

// Summary is one row of the /member_list/summary document, keyed by member
// id (ri_0001 style).
type Summary struct {
	Name     string `firestore:"name" json:"name"`
	Email    string `firestore:"email" json:"email"`
	Mobile   string `firestore:"mobile" json:"mobile"`
	JoinDate string `firestore:"joinDate" json:"joinDate"` // YYYY-MM-DD
}

// Detail is the /member_list/{memberId} document.
type Detail struct {
	ID           string    `firestore:"id" json:"id"`
	UID          string    `firestore:"uid" json:"uid"`
	Name         string    `firestore:"name" json:"name"`
	Email        string    `firestore:"email" json:"email"`
	Mobile       string    `firestore:"mobile" json:"mobile"`
	JoinDate     string    `firestore:"joinDate" json:"joinDate"`
	SearchTokens []string  `firestore:"searchTokens,omitempty" json:"-"`
	CreatedBy    string    `firestore:"createdBy" json:"createdBy"`
	CreatedAt    time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt" json:"updatedAt"`
}
