package ui

import (
	"fmt"

	"github.com/arredohq/arredo/internal/models"
	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = projectItem{}
	_ list.Item = sectionItem{}
	_ list.Item = roomTypeItem{}
	_ list.Item = productItem{}
)

// projectItem wraps [models.Project] to implement [list.Item].
type projectItem struct {
	project models.Project
}

func (i projectItem) FilterValue() string { return i.project.Name }
func (i projectItem) Title() string       { return i.project.Name }
func (i projectItem) Description() string {
	desc := fmt.Sprintf("%d sections", len(i.project.Sections))
	if i.project.Details != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.project.Details)
	}
	return desc
}

// sectionItem wraps [models.Section] to implement [list.Item].
type sectionItem struct {
	section models.Section
}

func (i sectionItem) FilterValue() string { return i.section.Title }
func (i sectionItem) Title() string       { return i.section.Title }
func (i sectionItem) Description() string {
	desc := i.section.Type
	if desc == "" {
		desc = "no room type"
	}
	if d := i.section.LatestDesign(); d != nil {
		desc = fmt.Sprintf("%s • %s", desc, d.Status)
	}
	return desc
}

// roomTypeItem wraps [models.RoomType] to implement [list.Item].
type roomTypeItem struct {
	roomType models.RoomType
}

func (i roomTypeItem) FilterValue() string { return i.roomType.Name }
func (i roomTypeItem) Title() string       { return i.roomType.Name }
func (i roomTypeItem) Description() string { return fmt.Sprintf("room type #%d", i.roomType.ID) }

// productItem wraps [models.Product] to implement [list.Item]. selected is a
// pointer into the model's selection set so toggles show up without
// rebuilding the list.
type productItem struct {
	product  models.Product
	selected map[string]models.ProductSelection
}

func (i productItem) FilterValue() string { return i.product.Name }
func (i productItem) Title() string {
	if _, ok := i.selected[i.product.ID]; ok {
		return fmt.Sprintf("[x] %s", i.product.Name)
	}
	return fmt.Sprintf("[ ] %s", i.product.Name)
}

func (i productItem) Description() string {
	desc := i.product.Category
	if desc == "" {
		desc = i.product.Collection
	}
	if i.product.Price > 0 {
		desc = fmt.Sprintf("%s • %.2f", desc, i.product.Price)
	}
	return desc
}
