package promotion

type UpsertPromotionRequest struct {
	Title           string `json:"title" validate:"required,min=2"`
	Description     string `json:"description"`
	DiscountPercent int    `json:"discount_percent" validate:"required,min=1,max=100"`
	Code            string `json:"code" validate:"required,min=3,max=32,alphanum"`
	Active          *bool  `json:"active"`
}

type ToggleRequest struct {
	Active bool `json:"active"`
}
