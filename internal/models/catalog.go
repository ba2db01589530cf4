package models

// RoomType is a selectable room category for a section.
type RoomType struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// RoomTypes is the built-in room type catalog offered on the room-type page.
var RoomTypes = []RoomType{
	{ID: 1, Name: "Balcony & Terrace", Image: "/assets/product-02.png"},
	{ID: 2, Name: "Garden", Image: "/assets/product-03.png"},
	{ID: 3, Name: "Cafe", Image: "/assets/product-04.png"},
	{ID: 4, Name: "Pool", Image: "/assets/product-05.png"},
	{ID: 6, Name: "Home", Image: "/assets/product-09.png"},
	{ID: 7, Name: "Office", Image: "/assets/product-10.png"},
	{ID: 8, Name: "Event", Image: "/assets/product-11.png"},
	{ID: 9, Name: "Wedding", Image: "/assets/product-12.png"},
	{ID: 10, Name: "Bar & Pub", Image: "/assets/product-13.png"},
	{ID: 11, Name: "Restaurant", Image: "/assets/product-14.png"},
	{ID: 12, Name: "Meeting Room", Image: "/assets/product-15.png"},
	{ID: 13, Name: "Mall & Food Court", Image: "/assets/product-16.png"},
}

// RoomTypeByName returns the room type with the given name, or nil.
func RoomTypeByName(name string) *RoomType {
	for i := range RoomTypes {
		if RoomTypes[i].Name == name {
			return &RoomTypes[i]
		}
	}
	return nil
}

// SubCategory is a product grouping within a collection.
type SubCategory struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
	Image string `json:"image,omitempty"`
}

// SubCategories maps a collection to its product subcategories.
var SubCategories = map[string][]SubCategory{
	"contract": {
		{ID: 1, Name: "Chairs", Value: "chairs", Image: "/assets/subcategory-chairs.png"},
		{ID: 3, Name: "Stools & Complements", Value: "stools & complements", Image: "/assets/subcategory-stools.png"},
		{ID: 4, Name: "Sunlounger & Lounge", Value: "sunlounger & lounge", Image: "/assets/subcategory-sunlounger.png"},
		{ID: 2, Name: "Lighting", Value: "lighting", Image: "/assets/subcategory-lighting.png"},
		{ID: 5, Name: "Tables", Value: "tables", Image: "/assets/subcategory-tables.png"},
	},
	"garden": {
		{ID: 1, Name: "Chairs", Value: "chairs", Image: "/assets/subcategory0-chairs.png"},
		{ID: 3, Name: "Children Group", Value: "children group", Image: "/assets/subcategory0-children-group.jpg"},
		{ID: 5, Name: "Tables", Value: "tables", Image: "/assets/subcategory0-tables.png"},
		{ID: 2, Name: "Stools & Multi Purpose", Value: "stools & multi purpose", Image: "/assets/subcategory0-stool-multipurpose.jpg"},
		{ID: 4, Name: "Sunloungers", Value: "sunloungers", Image: "/assets/subcategory0-sunloungers.jpg"},
	},
	"rattan": {
		{ID: 1, Name: "Chairs", Value: "chairs", Image: "/assets/subcategory1-chairs.png"},
		{ID: 5, Name: "Bar Stool", Value: "bar-stool", Image: "/assets/subcategory1-bar-stool.jpg"},
		{ID: 2, Name: "Tables", Value: "tables", Image: "/assets/subcategory1-tables.png"},
		{ID: 3, Name: "Lounge", Value: "lounge", Image: "/assets/subcategory1-lounge.png"},
		{ID: 4, Name: "Sunloungers", Value: "sunloungers", Image: "/assets/subcategory1-sunloungers.png"},
	},
}
