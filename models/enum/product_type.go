package enum

type ProductType string

const (
	ProductTypeGame  ProductType = "game"
	ProductTypeMerch ProductType = "merch"
)
