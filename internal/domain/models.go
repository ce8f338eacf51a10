package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Salutation represents the form of address of a lead
type Salutation string

const (
	SalutationMr   Salutation = "Mr"
	SalutationMs   Salutation = "Ms"
	SalutationMrs  Salutation = "Mrs"
	SalutationDr   Salutation = "Dr"
	SalutationProf Salutation = "Prof"
	SalutationMx   Salutation = "Mx"
)

// ScoreTrend represents the direction a lead score is moving
type ScoreTrend string

const (
	ScoreTrendUp     ScoreTrend = "up"
	ScoreTrendDown   ScoreTrend = "down"
	ScoreTrendStable ScoreTrend = "stable"
)

// PreferredChannel represents how a lead prefers to be contacted
type PreferredChannel string

const (
	PreferredChannelEmail    PreferredChannel = "email"
	PreferredChannelPhone    PreferredChannel = "phone"
	PreferredChannelSMS      PreferredChannel = "sms"
	PreferredChannelWhatsApp PreferredChannel = "whatsapp"
)

// Collection names
const (
	CollectionLeads         = "leads"
	CollectionNotes         = "notes"
	CollectionComments      = "comments"
	CollectionViews         = "views"
	CollectionCompanySizes  = "companysizes"
	CollectionIndustryTypes = "industrytypes"
	CollectionLeadSources   = "leadsources"
	CollectionLeadStatuses  = "leadstatuses"
)

// Lead is a sales prospect, the primary entity of the service
type Lead struct {
	ID                   bson.ObjectID    `bson:"_id,omitempty" json:"_id"`
	LeadOwner            string           `bson:"leadOwner" json:"leadOwner"`
	FullName             string           `bson:"fullName" json:"fullName"`
	Salutation           Salutation       `bson:"salutation,omitempty" json:"salutation,omitempty"`
	Email                string           `bson:"email" json:"email"`
	Website              string           `bson:"website,omitempty" json:"website,omitempty"`
	ContactCountryCode   string           `bson:"contactCountryCode,omitempty" json:"contactCountryCode,omitempty"`
	ContactNumber        string           `bson:"contactNumber,omitempty" json:"contactNumber,omitempty"`
	ContactExtension     string           `bson:"contactExtension,omitempty" json:"contactExtension,omitempty"`
	AlternateCountryCode string           `bson:"alternateCountryCode,omitempty" json:"alternateCountryCode,omitempty"`
	AlternateNumber      string           `bson:"alternateNumber,omitempty" json:"alternateNumber,omitempty"`
	AlternateExtension   string           `bson:"alternateExtension,omitempty" json:"alternateExtension,omitempty"`
	CompanyName          string           `bson:"companyName,omitempty" json:"companyName,omitempty"`
	Designation          string           `bson:"designation,omitempty" json:"designation,omitempty"`
	CompanySize          string           `bson:"companySize,omitempty" json:"companySize,omitempty"`
	IndustryType         string           `bson:"industryType,omitempty" json:"industryType,omitempty"`
	Status               string           `bson:"status" json:"status"`
	Source               string           `bson:"source" json:"source"`
	SequenceName         string           `bson:"sequenceName,omitempty" json:"sequenceName,omitempty"`
	Score                *int             `bson:"score,omitempty" json:"score,omitempty"`
	ScoreTrend           ScoreTrend       `bson:"scoreTrend,omitempty" json:"scoreTrend,omitempty"`
	PreferredChannel     PreferredChannel `bson:"preferredChannel,omitempty" json:"preferredChannel,omitempty"`
	LastActivityDate     *time.Time       `bson:"lastActivityDate,omitempty" json:"lastActivityDate,omitempty"`
	CreatedDate          time.Time        `bson:"createdDate" json:"createdDate"`
	NextStage            string           `bson:"nextStage,omitempty" json:"nextStage,omitempty"`
	LeadImage            string           `bson:"leadImage,omitempty" json:"leadImage,omitempty"`
	Description          string           `bson:"description,omitempty" json:"description,omitempty"`
	LinkedinURL          string           `bson:"linkedinUrl,omitempty" json:"linkedinUrl,omitempty"`
	TwitterURL           string           `bson:"twitterUrl,omitempty" json:"twitterUrl,omitempty"`
	AnnualRevenue        *float64         `bson:"annualRevenue,omitempty" json:"annualRevenue,omitempty"`
	CreatedBy            string           `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy            string           `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	IsArchived           bool             `bson:"isArchived" json:"isArchived"`
	CreatedAt            time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// FieldValue returns the stored value of a lead attribute by its document
// field name. The second return value is false when the attribute is absent
// from the stored document.
func (l *Lead) FieldValue(name string) (any, bool) {
	switch name {
	case "_id":
		return l.ID, !l.ID.IsZero()
	case "leadOwner":
		return present(l.LeadOwner)
	case "fullName":
		return present(l.FullName)
	case "salutation":
		return present(string(l.Salutation))
	case "email":
		return present(l.Email)
	case "website":
		return present(l.Website)
	case "contactCountryCode":
		return present(l.ContactCountryCode)
	case "contactNumber":
		return present(l.ContactNumber)
	case "contactExtension":
		return present(l.ContactExtension)
	case "alternateCountryCode":
		return present(l.AlternateCountryCode)
	case "alternateNumber":
		return present(l.AlternateNumber)
	case "alternateExtension":
		return present(l.AlternateExtension)
	case "companyName":
		return present(l.CompanyName)
	case "designation":
		return present(l.Designation)
	case "companySize":
		return present(l.CompanySize)
	case "industryType":
		return present(l.IndustryType)
	case "status":
		return present(l.Status)
	case "source":
		return present(l.Source)
	case "sequenceName":
		return present(l.SequenceName)
	case "score":
		if l.Score == nil {
			return nil, false
		}
		return *l.Score, true
	case "scoreTrend":
		return present(string(l.ScoreTrend))
	case "preferredChannel":
		return present(string(l.PreferredChannel))
	case "lastActivityDate":
		if l.LastActivityDate == nil {
			return nil, false
		}
		return *l.LastActivityDate, true
	case "createdDate":
		return l.CreatedDate, !l.CreatedDate.IsZero()
	case "nextStage":
		return present(l.NextStage)
	case "leadImage":
		return present(l.LeadImage)
	case "description":
		return present(l.Description)
	case "linkedinUrl":
		return present(l.LinkedinURL)
	case "twitterUrl":
		return present(l.TwitterURL)
	case "annualRevenue":
		if l.AnnualRevenue == nil {
			return nil, false
		}
		return *l.AnnualRevenue, true
	case "createdBy":
		return present(l.CreatedBy)
	case "updatedBy":
		return present(l.UpdatedBy)
	case "isArchived":
		return l.IsArchived, true
	case "createdAt":
		return l.CreatedAt, !l.CreatedAt.IsZero()
	case "updatedAt":
		return l.UpdatedAt, !l.UpdatedAt.IsZero()
	}
	return nil, false
}

func present(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	return s, true
}

// Note is a rich-text note attached to a lead
type Note struct {
	ID             bson.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Title          string         `bson:"title" json:"title"`
	LeadID         bson.ObjectID  `bson:"leadId" json:"leadId"`
	Content        string         `bson:"content" json:"content"`
	CreatedBy      string         `bson:"createdBy" json:"createdBy"`
	OrganizationID string         `bson:"organizationId" json:"organizationId"`
	IsPinned       bool           `bson:"isPinned" json:"isPinned"`
	PinnedAt       *time.Time     `bson:"pinnedAt,omitempty" json:"pinnedAt,omitempty"`
	CreatedTaskID  string         `bson:"createdTaskId,omitempty" json:"createdTaskId,omitempty"`
	CreatedAt      time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// Comment is a reply in the thread of a note
type Comment struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	NoteID         bson.ObjectID `bson:"noteId" json:"noteId"`
	Content        string        `bson:"content" json:"content"`
	CreatedBy      string        `bson:"createdBy" json:"createdBy"`
	OrganizationID string        `bson:"organizationId" json:"organizationId"`
	CreatedAt      time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// View is a user-saved combination of filters, sort and visible columns
type View struct {
	ID               bson.ObjectID  `bson:"_id,omitempty" json:"_id"`
	UserID           string         `bson:"userId" json:"userId"`
	Name             string         `bson:"name" json:"name"`
	IsDefault        bool           `bson:"isDefault" json:"isDefault"`
	Filters          []FilterClause `bson:"filters" json:"filters"`
	SortBy           string         `bson:"sortBy,omitempty" json:"sortBy,omitempty"`
	SortOrder        SortOrder      `bson:"sortOrder,omitempty" json:"sortOrder,omitempty"`
	ColumnsToDisplay []string       `bson:"columnsToDisplay" json:"columnsToDisplay"`
	CreatedAt        time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// CompanySize is reference data describing a company headcount bracket
type CompanySize struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Label         string        `bson:"label" json:"label"`
	EmployeeRange string        `bson:"employeeRange,omitempty" json:"employeeRange,omitempty"`
	IsDefault     bool          `bson:"isDefault" json:"isDefault"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// IndustryType is reference data for a lead's industry
type IndustryType struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string        `bson:"name" json:"name"`
	IsDefault bool          `bson:"isDefault" json:"isDefault"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// LeadSource is reference data for where a lead came from
type LeadSource struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string        `bson:"name" json:"name"`
	Description string        `bson:"description,omitempty" json:"description,omitempty"`
	IsDefault   bool          `bson:"isDefault" json:"isDefault"`
	IsActive    bool          `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// LeadStatus is reference data for the lifecycle status of a lead
type LeadStatus struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string        `bson:"name" json:"name"`
	IsDefault bool          `bson:"isDefault" json:"isDefault"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// FieldValue returns a stored note attribute by document name
func (n *Note) FieldValue(name string) (any, bool) {
	switch name {
	case "_id":
		return n.ID, !n.ID.IsZero()
	case "title":
		return present(n.Title)
	case "leadId":
		return n.LeadID, !n.LeadID.IsZero()
	case "content":
		return present(n.Content)
	case "createdBy":
		return present(n.CreatedBy)
	case "organizationId":
		return present(n.OrganizationID)
	case "isPinned":
		return n.IsPinned, true
	case "pinnedAt":
		if n.PinnedAt == nil {
			return nil, false
		}
		return *n.PinnedAt, true
	case "createdTaskId":
		return present(n.CreatedTaskID)
	case "createdAt":
		return n.CreatedAt, !n.CreatedAt.IsZero()
	case "updatedAt":
		return n.UpdatedAt, !n.UpdatedAt.IsZero()
	}
	return nil, false
}

// FieldValue returns a stored comment attribute by document name
func (c *Comment) FieldValue(name string) (any, bool) {
	switch name {
	case "_id":
		return c.ID, !c.ID.IsZero()
	case "noteId":
		return c.NoteID, !c.NoteID.IsZero()
	case "content":
		return present(c.Content)
	case "createdBy":
		return present(c.CreatedBy)
	case "organizationId":
		return present(c.OrganizationID)
	case "createdAt":
		return c.CreatedAt, !c.CreatedAt.IsZero()
	case "updatedAt":
		return c.UpdatedAt, !c.UpdatedAt.IsZero()
	}
	return nil, false
}

// FieldValue returns a stored view attribute by document name
func (v *View) FieldValue(name string) (any, bool) {
	switch name {
	case "_id":
		return v.ID, !v.ID.IsZero()
	case "userId":
		return present(v.UserID)
	case "name":
		return present(v.Name)
	case "isDefault":
		return v.IsDefault, true
	case "sortBy":
		return present(v.SortBy)
	case "sortOrder":
		return present(string(v.SortOrder))
	case "createdAt":
		return v.CreatedAt, !v.CreatedAt.IsZero()
	case "updatedAt":
		return v.UpdatedAt, !v.UpdatedAt.IsZero()
	}
	return nil, false
}

// FieldValue returns a stored company size attribute by document name
func (c *CompanySize) FieldValue(name string) (any, bool) {
	switch name {
	case "_id":
		return c.ID, !c.ID.IsZero()
	case "label":
		return present(c.Label)
	case "employeeRange":
		return present(c.EmployeeRange)
	}
	return referenceField(name, c.IsDefault, c.CreatedAt, c.UpdatedAt)
}

// FieldValue returns a stored industry type attribute by document name
func (i *IndustryType) FieldValue(name string) (any, bool) {
	switch name {
	case "_id":
		return i.ID, !i.ID.IsZero()
	case "name":
		return present(i.Name)
	}
	return referenceField(name, i.IsDefault, i.CreatedAt, i.UpdatedAt)
}

// FieldValue returns a stored lead source attribute by document name
func (s *LeadSource) FieldValue(name string) (any, bool) {
	switch name {
	case "_id":
		return s.ID, !s.ID.IsZero()
	case "name":
		return present(s.Name)
	case "description":
		return present(s.Description)
	case "isActive":
		return s.IsActive, true
	}
	return referenceField(name, s.IsDefault, s.CreatedAt, s.UpdatedAt)
}

// FieldValue returns a stored lead status attribute by document name
func (s *LeadStatus) FieldValue(name string) (any, bool) {
	switch name {
	case "_id":
		return s.ID, !s.ID.IsZero()
	case "name":
		return present(s.Name)
	}
	return referenceField(name, s.IsDefault, s.CreatedAt, s.UpdatedAt)
}

func referenceField(name string, isDefault bool, createdAt, updatedAt time.Time) (any, bool) {
	switch name {
	case "isDefault":
		return isDefault, true
	case "createdAt":
		return createdAt, !createdAt.IsZero()
	case "updatedAt":
		return updatedAt, !updatedAt.IsZero()
	}
	return nil, false
}
