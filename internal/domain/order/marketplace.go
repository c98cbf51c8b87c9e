package order

// MarketplaceType identifies the sales channel of an order
type MarketplaceType string

const (
	MarketplaceNaver       MarketplaceType = "NAVER"
	MarketplaceCoupang     MarketplaceType = "COUPANG"
	MarketplaceElevenSt    MarketplaceType = "ELEVEN_ST"
	MarketplaceGmarket     MarketplaceType = "GMARKET"
	MarketplaceAuction     MarketplaceType = "AUCTION"
	MarketplaceWemakeprice MarketplaceType = "WEMAKEPRICE"
	MarketplaceTmon        MarketplaceType = "TMON"
)

var marketplaceDisplayNames = map[MarketplaceType]string{
	MarketplaceNaver:       "네이버",
	MarketplaceCoupang:     "쿠팡",
	MarketplaceElevenSt:    "11번가",
	MarketplaceGmarket:     "G마켓",
	MarketplaceAuction:     "옥션",
	MarketplaceWemakeprice: "위메프",
	MarketplaceTmon:        "티몬",
}

// String returns the string representation
func (m MarketplaceType) String() string {
	return string(m)
}

// IsValid checks if the marketplace type is known
func (m MarketplaceType) IsValid() bool {
	_, ok := marketplaceDisplayNames[m]
	return ok
}

// DisplayName returns the customer-facing channel name.
// Unknown channels fall back to their code.
func (m MarketplaceType) DisplayName() string {
	if name, ok := marketplaceDisplayNames[m]; ok {
		return name
	}
	return string(m)
}
