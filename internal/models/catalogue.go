package models

type CatalogueItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

var Catalogue = []CatalogueItem{
	{ID: "1", Name: "Fade Moderno", Image: "/static/cuts/cut-1.jpg"},
	{ID: "2", Name: "Pompadour Texturizado", Image: "/static/cuts/cut-2.jpg"},
	{ID: "3", Name: "Undercut Clásico", Image: "/static/cuts/cut-3.jpg"},
	{ID: "4", Name: "Crop Texturizado", Image: "/static/cuts/cut-4.jpg"},
	{ID: "5", Name: "Diseño Geométrico", Image: "/static/cuts/cut-5.jpg"},
	{ID: "6", Name: "Taper Clásico", Image: "/static/cuts/cut-6.jpg"},
}

func FindCatalogueItem(id string) (CatalogueItem, bool) {
	for _, item := range Catalogue {
		if item.ID == id {
			return item, true
		}
	}
	return CatalogueItem{}, false
}
