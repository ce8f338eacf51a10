package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// Response envelopes
// ============================================================================

// MessageResponse wraps a payload with a status code and a human message
type MessageResponse[T any] struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       T      `json:"data"`
}

// ListResult is the paginated envelope used by the settings endpoints
type ListResult[T any] struct {
	Items           []T   `json:"items"`
	Total           int64 `json:"total"`
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewListResult builds a ListResult from one page of items
func NewListResult[T any](items []T, total int64, page, limit int) ListResult[T] {
	meta := NewPageMeta(total, page, limit)
	if items == nil {
		items = []T{}
	}
	return ListResult[T]{
		Items:           items,
		Total:           total,
		Page:            page,
		Limit:           limit,
		TotalPages:      meta.LastPage,
		HasNextPage:     meta.HasNextPage,
		HasPreviousPage: meta.HasPreviousPage,
	}
}

// ItemsPage is the paginated envelope used by notes and comments
type ItemsPage[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// NewItemsPage builds an ItemsPage from one page of items
func NewItemsPage[T any](items []T, total int64, page, limit int) ItemsPage[T] {
	if items == nil {
		items = []T{}
	}
	return ItemsPage[T]{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: NewPageMeta(total, page, limit).LastPage,
	}
}

// BulkDeleteResponse reports how many leads a bulk delete removed
type BulkDeleteResponse struct {
	Success      bool  `json:"success"`
	DeletedCount int64 `json:"deletedCount"`
}

// ModifiedCountResponse reports how many documents a bulk write changed
type ModifiedCountResponse struct {
	ModifiedCount int64 `json:"modifiedCount"`
}

// UsageResponse reports how many leads reference a settings value
type UsageResponse struct {
	Count int64 `json:"count"`
}

// MediaUploadResponse is returned after uploading an image embedded in a note
type MediaUploadResponse struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
}

// ============================================================================
// Lead requests
// ============================================================================

// CreateLeadRequest is the payload for creating a lead
type CreateLeadRequest struct {
	LeadOwner            string           `json:"leadOwner" validate:"required"`
	FullName             string           `json:"fullName" validate:"required"`
	Salutation           Salutation       `json:"salutation,omitempty" validate:"omitempty,oneof=Mr Ms Mrs Dr Prof Mx"`
	Email                string           `json:"email" validate:"required,email"`
	Website              string           `json:"website,omitempty" validate:"omitempty,url"`
	ContactCountryCode   string           `json:"contactCountryCode,omitempty" validate:"omitempty,dialcode"`
	ContactNumber        string           `json:"contactNumber,omitempty" validate:"omitempty,len=10,digits"`
	ContactExtension     string           `json:"contactExtension,omitempty" validate:"omitempty,min=1,max=6,digits"`
	AlternateCountryCode string           `json:"alternateCountryCode,omitempty" validate:"omitempty,dialcode"`
	AlternateNumber      string           `json:"alternateNumber,omitempty" validate:"omitempty,len=10,digits"`
	AlternateExtension   string           `json:"alternateExtension,omitempty" validate:"omitempty,min=1,max=6,digits"`
	CompanyName          string           `json:"companyName,omitempty" validate:"omitempty,min=2,max=100"`
	Designation          string           `json:"designation,omitempty" validate:"omitempty,min=2,max=50"`
	CompanySize          string           `json:"companySize,omitempty"`
	IndustryType         string           `json:"industryType,omitempty"`
	Status               string           `json:"status" validate:"required"`
	Source               string           `json:"source" validate:"required"`
	SequenceName         string           `json:"sequenceName,omitempty"`
	Score                *int             `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
	ScoreTrend           ScoreTrend       `json:"scoreTrend,omitempty" validate:"omitempty,oneof=up down stable"`
	PreferredChannel     PreferredChannel `json:"preferredChannel,omitempty" validate:"omitempty,oneof=email phone sms whatsapp"`
	LastActivityDate     *time.Time       `json:"lastActivityDate,omitempty"`
	NextStage            string           `json:"nextStage,omitempty"`
	Description          string           `json:"description,omitempty" validate:"omitempty,max=1000"`
	LinkedinURL          string           `json:"linkedinUrl,omitempty" validate:"omitempty,url"`
	TwitterURL           string           `json:"twitterUrl,omitempty" validate:"omitempty,url"`
	AnnualRevenue        *float64         `json:"annualRevenue,omitempty" validate:"omitempty,gte=0"`
	CreatedBy            string           `json:"createdBy" validate:"required"`
}

// ToLead maps the request onto a new Lead. Email is normalised to lower case.
func (r *CreateLeadRequest) ToLead() *Lead {
	return &Lead{
		LeadOwner:            r.LeadOwner,
		FullName:             r.FullName,
		Salutation:           r.Salutation,
		Email:                NormalizeEmail(r.Email),
		Website:              r.Website,
		ContactCountryCode:   r.ContactCountryCode,
		ContactNumber:        r.ContactNumber,
		ContactExtension:     r.ContactExtension,
		AlternateCountryCode: r.AlternateCountryCode,
		AlternateNumber:      r.AlternateNumber,
		AlternateExtension:   r.AlternateExtension,
		CompanyName:          r.CompanyName,
		Designation:          r.Designation,
		CompanySize:          r.CompanySize,
		IndustryType:         r.IndustryType,
		Status:               r.Status,
		Source:               r.Source,
		SequenceName:         r.SequenceName,
		Score:                r.Score,
		ScoreTrend:           r.ScoreTrend,
		PreferredChannel:     r.PreferredChannel,
		LastActivityDate:     r.LastActivityDate,
		NextStage:            r.NextStage,
		Description:          r.Description,
		LinkedinURL:          r.LinkedinURL,
		TwitterURL:           r.TwitterURL,
		AnnualRevenue:        r.AnnualRevenue,
		CreatedBy:            r.CreatedBy,
	}
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UpdateLeadRequest is a partial update of a lead. Nil fields are left
// untouched. UpdatedFields lists the keys the client actually sent.
type UpdateLeadRequest struct {
	LeadOwner            *string           `json:"leadOwner,omitempty" validate:"omitempty,min=1"`
	FullName             *string           `json:"fullName,omitempty" validate:"omitempty,min=1"`
	Salutation           *Salutation       `json:"salutation,omitempty" validate:"omitempty,oneof=Mr Ms Mrs Dr Prof Mx"`
	Email                *string           `json:"email,omitempty" validate:"omitempty,email"`
	Website              *string           `json:"website,omitempty" validate:"omitempty,url"`
	ContactCountryCode   *string           `json:"contactCountryCode,omitempty" validate:"omitempty,dialcode"`
	ContactNumber        *string           `json:"contactNumber,omitempty" validate:"omitempty,len=10,digits"`
	ContactExtension     *string           `json:"contactExtension,omitempty" validate:"omitempty,min=1,max=6,digits"`
	AlternateCountryCode *string           `json:"alternateCountryCode,omitempty" validate:"omitempty,dialcode"`
	AlternateNumber      *string           `json:"alternateNumber,omitempty" validate:"omitempty,len=10,digits"`
	AlternateExtension   *string           `json:"alternateExtension,omitempty" validate:"omitempty,min=1,max=6,digits"`
	CompanyName          *string           `json:"companyName,omitempty" validate:"omitempty,min=2,max=100"`
	Designation          *string           `json:"designation,omitempty" validate:"omitempty,min=2,max=50"`
	CompanySize          *string           `json:"companySize,omitempty"`
	IndustryType         *string           `json:"industryType,omitempty"`
	Status               *string           `json:"status,omitempty" validate:"omitempty,min=1"`
	Source               *string           `json:"source,omitempty" validate:"omitempty,min=1"`
	SequenceName         *string           `json:"sequenceName,omitempty"`
	Score                *int              `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
	ScoreTrend           *ScoreTrend       `json:"scoreTrend,omitempty" validate:"omitempty,oneof=up down stable"`
	PreferredChannel     *PreferredChannel `json:"preferredChannel,omitempty" validate:"omitempty,oneof=email phone sms whatsapp"`
	LastActivityDate     *time.Time        `json:"lastActivityDate,omitempty"`
	CreatedDate          *time.Time        `json:"createdDate,omitempty"`
	NextStage            *string           `json:"nextStage,omitempty"`
	LeadImage            *string           `json:"leadImage,omitempty"`
	Description          *string           `json:"description,omitempty" validate:"omitempty,max=1000"`
	LinkedinURL          *string           `json:"linkedinUrl,omitempty" validate:"omitempty,url"`
	TwitterURL           *string           `json:"twitterUrl,omitempty" validate:"omitempty,url"`
	AnnualRevenue        *float64          `json:"annualRevenue,omitempty" validate:"omitempty,gte=0"`
	IsArchived           *bool             `json:"isArchived,omitempty"`
	UpdatedBy            string            `json:"updatedBy,omitempty"`

	UpdatedFields []string `json:"-"`
}

// Apply copies every provided field onto the lead. LeadImage is handled by
// the caller since it depends on the object store.
func (r *UpdateLeadRequest) Apply(l *Lead) {
	setString(&l.LeadOwner, r.LeadOwner)
	setString(&l.FullName, r.FullName)
	if r.Salutation != nil {
		l.Salutation = *r.Salutation
	}
	if r.Email != nil {
		l.Email = NormalizeEmail(*r.Email)
	}
	setString(&l.Website, r.Website)
	setString(&l.ContactCountryCode, r.ContactCountryCode)
	setString(&l.ContactNumber, r.ContactNumber)
	setString(&l.ContactExtension, r.ContactExtension)
	setString(&l.AlternateCountryCode, r.AlternateCountryCode)
	setString(&l.AlternateNumber, r.AlternateNumber)
	setString(&l.AlternateExtension, r.AlternateExtension)
	setString(&l.CompanyName, r.CompanyName)
	setString(&l.Designation, r.Designation)
	setString(&l.CompanySize, r.CompanySize)
	setString(&l.IndustryType, r.IndustryType)
	setString(&l.Status, r.Status)
	setString(&l.Source, r.Source)
	setString(&l.SequenceName, r.SequenceName)
	if r.Score != nil {
		l.Score = r.Score
	}
	if r.ScoreTrend != nil {
		l.ScoreTrend = *r.ScoreTrend
	}
	if r.PreferredChannel != nil {
		l.PreferredChannel = *r.PreferredChannel
	}
	if r.LastActivityDate != nil {
		l.LastActivityDate = r.LastActivityDate
	}
	if r.CreatedDate != nil {
		l.CreatedDate = *r.CreatedDate
	}
	setString(&l.NextStage, r.NextStage)
	setString(&l.Description, r.Description)
	setString(&l.LinkedinURL, r.LinkedinURL)
	setString(&l.TwitterURL, r.TwitterURL)
	if r.AnnualRevenue != nil {
		l.AnnualRevenue = r.AnnualRevenue
	}
	if r.IsArchived != nil {
		l.IsArchived = *r.IsArchived
	}
	if r.UpdatedBy != "" {
		l.UpdatedBy = r.UpdatedBy
	}
}

// ClearsImage reports whether the client explicitly asked to drop the image
func (r *UpdateLeadRequest) ClearsImage() bool {
	return r.LeadImage != nil && *r.LeadImage == ""
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// LeadPatch holds the subset of lead fields that may be changed in bulk
type LeadPatch struct {
	LeadOwner        *string           `json:"leadOwner,omitempty"`
	Salutation       *Salutation       `json:"salutation,omitempty" validate:"omitempty,oneof=Mr Ms Mrs Dr Prof Mx"`
	Status           *string           `json:"status,omitempty"`
	SequenceName     *string           `json:"sequenceName,omitempty"`
	Source           *string           `json:"source,omitempty"`
	Score            *int              `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
	ScoreTrend       *ScoreTrend       `json:"scoreTrend,omitempty" validate:"omitempty,oneof=up down stable"`
	PreferredChannel *PreferredChannel `json:"preferredChannel,omitempty" validate:"omitempty,oneof=email phone sms whatsapp"`
	NextStage        *string           `json:"nextStage,omitempty"`
	AnnualRevenue    *float64          `json:"annualRevenue,omitempty" validate:"omitempty,gte=0"`
	UpdatedBy        *string           `json:"updatedBy,omitempty"`
	IsArchived       *bool             `json:"isArchived,omitempty"`
}

// Fields returns the provided fields keyed by document field name
func (p *LeadPatch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.LeadOwner != nil {
		fields["leadOwner"] = *p.LeadOwner
	}
	if p.Salutation != nil {
		fields["salutation"] = *p.Salutation
	}
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	if p.SequenceName != nil {
		fields["sequenceName"] = *p.SequenceName
	}
	if p.Source != nil {
		fields["source"] = *p.Source
	}
	if p.Score != nil {
		fields["score"] = *p.Score
	}
	if p.ScoreTrend != nil {
		fields["scoreTrend"] = *p.ScoreTrend
	}
	if p.PreferredChannel != nil {
		fields["preferredChannel"] = *p.PreferredChannel
	}
	if p.NextStage != nil {
		fields["nextStage"] = *p.NextStage
	}
	if p.AnnualRevenue != nil {
		fields["annualRevenue"] = *p.AnnualRevenue
	}
	if p.UpdatedBy != nil {
		fields["updatedBy"] = *p.UpdatedBy
	}
	if p.IsArchived != nil {
		fields["isArchived"] = *p.IsArchived
	}
	return fields
}

// Apply copies every provided field onto the lead
func (p *LeadPatch) Apply(l *Lead) {
	setString(&l.LeadOwner, p.LeadOwner)
	if p.Salutation != nil {
		l.Salutation = *p.Salutation
	}
	setString(&l.Status, p.Status)
	setString(&l.SequenceName, p.SequenceName)
	setString(&l.Source, p.Source)
	if p.Score != nil {
		l.Score = p.Score
	}
	if p.ScoreTrend != nil {
		l.ScoreTrend = *p.ScoreTrend
	}
	if p.PreferredChannel != nil {
		l.PreferredChannel = *p.PreferredChannel
	}
	setString(&l.NextStage, p.NextStage)
	if p.AnnualRevenue != nil {
		l.AnnualRevenue = p.AnnualRevenue
	}
	setString(&l.UpdatedBy, p.UpdatedBy)
	if p.IsArchived != nil {
		l.IsArchived = *p.IsArchived
	}
}

// DeleteLeadRequest names who deleted a lead
type DeleteLeadRequest struct {
	DeletedBy string `json:"deletedBy"`
}

// BulkDeleteRequest deletes several leads at once
type BulkDeleteRequest struct {
	LeadIDs   []string `json:"leadIds"`
	DeletedBy string   `json:"deletedBy"`
}

// BulkUpdateRequest applies the same patch to several leads
type BulkUpdateRequest struct {
	LeadIDs []string `json:"leadIds"`
	LeadPatch
}

// ArchiveRequest archives or restores several leads. Archive defaults to true.
type ArchiveRequest struct {
	LeadIDs []string `json:"leadIds"`
	Archive *bool    `json:"archive,omitempty"`
}

// ExportSelectedRequest exports the given leads
type ExportSelectedRequest struct {
	LeadIDs []string `json:"leadIds"`
}

// AdvancedFiltersRequest is the body of the lead search and export endpoints
type AdvancedFiltersRequest struct {
	Filters []FilterClause `json:"filters" validate:"dive"`
}

// ============================================================================
// Note and comment requests
// ============================================================================

// CreateNoteRequest is the payload for creating a note
type CreateNoteRequest struct {
	Title           string `json:"title" validate:"required"`
	Content         string `json:"content" validate:"required,max=10000"`
	LeadID          string `json:"leadId" validate:"required,len=24,hexadecimal"`
	CreatedBy       string `json:"createdBy" validate:"required"`
	OrganizationID  string `json:"organizationId" validate:"required"`
	CreateTask      bool   `json:"createTask,omitempty"`
	DueDate         string `json:"dueDate,omitempty"`
	TaskDescription string `json:"taskDescription,omitempty" validate:"omitempty,max=250"`
}

// UpdateNoteRequest is a partial update of a note
type UpdateNoteRequest struct {
	Title          *string `json:"title,omitempty" validate:"omitempty,min=1"`
	Content        *string `json:"content,omitempty" validate:"omitempty,max=10000"`
	CreatedBy      string  `json:"createdBy,omitempty"`
	OrganizationID string  `json:"organizationId,omitempty"`
}

// CreateCommentRequest is the payload for commenting on a note
type CreateCommentRequest struct {
	Content        string `json:"content" validate:"required,max=1000"`
	CreatedBy      string `json:"createdBy" validate:"required"`
	OrganizationID string `json:"organizationId" validate:"required"`
}

// UpdateCommentRequest replaces the content of a comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// ============================================================================
// View requests
// ============================================================================

// CreateViewRequest is the payload for saving a view
type CreateViewRequest struct {
	Name             string         `json:"name" validate:"required"`
	IsDefault        bool           `json:"isDefault,omitempty"`
	Filters          []FilterClause `json:"filters,omitempty" validate:"dive"`
	SortBy           string         `json:"sortBy,omitempty"`
	SortOrder        SortOrder      `json:"sortOrder,omitempty" validate:"omitempty,oneof=asc desc"`
	ColumnsToDisplay []string       `json:"columnsToDisplay,omitempty"`
}

// UpdateViewRequest is a partial update of a view. Nil slices keep the
// stored value.
type UpdateViewRequest struct {
	Name             *string        `json:"name,omitempty" validate:"omitempty,min=1"`
	IsDefault        *bool          `json:"isDefault,omitempty"`
	Filters          []FilterClause `json:"filters,omitempty" validate:"dive"`
	SortBy           *string        `json:"sortBy,omitempty"`
	SortOrder        *SortOrder     `json:"sortOrder,omitempty" validate:"omitempty,oneof=asc desc"`
	ColumnsToDisplay []string       `json:"columnsToDisplay,omitempty"`
}

// ============================================================================
// Settings requests
// ============================================================================

// ReferenceListQuery holds the list options shared by the settings endpoints
type ReferenceListQuery struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder SortOrder
}

// CreateCompanySizeRequest is the payload for creating a company size
type CreateCompanySizeRequest struct {
	Label         string `json:"label" validate:"required,max=50,sizelabel"`
	EmployeeRange string `json:"employeeRange,omitempty" validate:"omitempty,employeerange"`
	IsDefault     bool   `json:"isDefault,omitempty"`
}

// UpdateCompanySizeRequest is a partial update of a company size
type UpdateCompanySizeRequest struct {
	Label         *string `json:"label,omitempty" validate:"omitempty,max=50,sizelabel"`
	EmployeeRange *string `json:"employeeRange,omitempty" validate:"omitempty,employeerange"`
	IsDefault     *bool   `json:"isDefault,omitempty"`
}

// CreateIndustryTypeRequest is the payload for creating an industry type
type CreateIndustryTypeRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

// UpdateIndustryTypeRequest is a partial update of an industry type
type UpdateIndustryTypeRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	IsDefault *bool   `json:"isDefault,omitempty"`
}

// CreateLeadSourceRequest is the payload for creating a lead source
type CreateLeadSourceRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsDefault   bool   `json:"isDefault,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// UpdateLeadSourceRequest is a partial update of a lead source
type UpdateLeadSourceRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsDefault   *bool   `json:"isDefault,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// CreateLeadStatusRequest is the payload for creating a lead status
type CreateLeadStatusRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

// UpdateLeadStatusRequest is a partial update of a lead status
type UpdateLeadStatusRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	IsDefault *bool   `json:"isDefault,omitempty"`
}

// ToCompanySize builds a new company size stamped with now
func (r *CreateCompanySizeRequest) ToCompanySize(now time.Time) *CompanySize {
	return &CompanySize{
		ID:            bson.NewObjectID(),
		Label:         strings.TrimSpace(r.Label),
		EmployeeRange: r.EmployeeRange,
		IsDefault:     r.IsDefault,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Fields returns the provided fields keyed by document field name
func (r *UpdateCompanySizeRequest) Fields() map[string]any {
	fields := make(map[string]any)
	if r.Label != nil {
		fields["label"] = strings.TrimSpace(*r.Label)
	}
	if r.EmployeeRange != nil {
		fields["employeeRange"] = *r.EmployeeRange
	}
	if r.IsDefault != nil {
		fields["isDefault"] = *r.IsDefault
	}
	return fields
}

// ToIndustryType builds a new industry type stamped with now
func (r *CreateIndustryTypeRequest) ToIndustryType(now time.Time) *IndustryType {
	return &IndustryType{
		ID:        bson.NewObjectID(),
		Name:      strings.TrimSpace(r.Name),
		IsDefault: r.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Fields returns the provided fields keyed by document field name
func (r *UpdateIndustryTypeRequest) Fields() map[string]any {
	return nameFields(r.Name, r.IsDefault)
}

// ToLeadSource builds a new lead source stamped with now. Sources are
// active unless the request says otherwise.
func (r *CreateLeadSourceRequest) ToLeadSource(now time.Time) *LeadSource {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &LeadSource{
		ID:          bson.NewObjectID(),
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		IsDefault:   r.IsDefault,
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Fields returns the provided fields keyed by document field name
func (r *UpdateLeadSourceRequest) Fields() map[string]any {
	fields := nameFields(r.Name, r.IsDefault)
	if r.Description != nil {
		fields["description"] = *r.Description
	}
	if r.IsActive != nil {
		fields["isActive"] = *r.IsActive
	}
	return fields
}

// ToLeadStatus builds a new lead status stamped with now
func (r *CreateLeadStatusRequest) ToLeadStatus(now time.Time) *LeadStatus {
	return &LeadStatus{
		ID:        bson.NewObjectID(),
		Name:      strings.TrimSpace(r.Name),
		IsDefault: r.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Fields returns the provided fields keyed by document field name
func (r *UpdateLeadStatusRequest) Fields() map[string]any {
	return nameFields(r.Name, r.IsDefault)
}

func nameFields(name *string, isDefault *bool) map[string]any {
	fields := make(map[string]any)
	if name != nil {
		fields["name"] = strings.TrimSpace(*name)
	}
	if isDefault != nil {
		fields["isDefault"] = *isDefault
	}
	return fields
}
