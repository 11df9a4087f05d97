package shopify

// Metafield is a stored key/value entry on the Shopify Admin API. The cart
// snapshot lives in one of these, owned by the customer record.
type Metafield struct {
	ID            int64  `json:"id"`
	Namespace     string `json:"namespace"`
	Key           string `json:"key"`
	Type          string `json:"type"`
	Value         string `json:"value"`
	OwnerID       int64  `json:"owner_id,omitempty"`
	OwnerResource string `json:"owner_resource,omitempty"`
}

// MetafieldInput is the write-side shape for create and update calls.
type MetafieldInput struct {
	Namespace     string `json:"namespace"`
	Key           string `json:"key"`
	Type          string `json:"type"`
	Value         string `json:"value"`
	OwnerID       string `json:"owner_id,omitempty"`
	OwnerResource string `json:"owner_resource,omitempty"`
}

type MetafieldsResponse struct {
	Metafields []Metafield `json:"metafields"`
}

type Shop struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Domain   string `json:"domain"`
	Currency string `json:"currency"`
	Timezone string `json:"iana_timezone"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}
