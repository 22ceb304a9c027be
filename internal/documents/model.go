package documents

import "time"

// TemplateStatus tracks the publishing state of a template.
type TemplateStatus string

const (
	TemplateStatusDraft     TemplateStatus = "draft"
	TemplateStatusPublished TemplateStatus = "published"
)

const (
	defaultTemplateName  = "New Canvas Template"
	untitledTemplateName = "Untitled Template"
)

// Template is the persisted row behind a canvas document.
type Template struct {
	TemplateID       string         `gorm:"column:template_id;primaryKey;size:190;not null"`
	OwnerID          string         `gorm:"column:owner_id;size:190;not null;index:idx_templates_owner_updated,priority:1"`
	Name             string         `gorm:"column:name;size:255;not null"`
	Subject          string         `gorm:"column:subject;size:255;not null;default:''"`
	Status           TemplateStatus `gorm:"column:status;size:32;not null;default:'draft'"`
	CanvasStateJSON  string         `gorm:"column:canvas_state;type:text;not null;default:''"`
	BuilderTreeJSON  string         `gorm:"column:builder_tree;type:text;not null;default:''"`
	CreatedAtSeconds int64          `gorm:"column:created_at_s;not null"`
	UpdatedAtSeconds int64          `gorm:"column:updated_at_s;not null;index:idx_templates_owner_updated,priority:2"`
}

// TableName provides the explicit table binding for GORM.
func (Template) TableName() string {
	return "templates"
}

// Summary is the listing view of a template.
type Summary struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Subject   string         `json:"subject"`
	Status    TemplateStatus `json:"status"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (t Template) summary() Summary {
	return Summary{
		ID:        t.TemplateID,
		Name:      t.Name,
		Subject:   t.Subject,
		Status:    t.Status,
		UpdatedAt: time.Unix(t.UpdatedAtSeconds, 0).UTC(),
	}
}
