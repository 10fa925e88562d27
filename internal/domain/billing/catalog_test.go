package billing

import "testing"

func TestCatalogDefaultQuotas(t *testing.T) {
	c := NewCatalog(nil, nil, nil)

	tests := []struct {
		plan Plan
		want int
	}{
		{PlanNone, 0},
		{PlanBasic, 500},
		{PlanBusiness, 1000},
		{PlanEnterprise, 4500},
	}

	for _, tt := range tests {
		if got := c.QuotaFor(tt.plan); got != tt.want {
			t.Errorf("QuotaFor(%v) = %d, want %d", tt.plan, got, tt.want)
		}
	}
}

func TestCatalogQuotaOverrides(t *testing.T) {
	c := NewCatalog(map[string]int{
		"basic": 250,
		"none":  99,  // none is never overridable
		"bogus": 123, // unknown plans are dropped
	}, nil, nil)

	if got := c.QuotaFor(PlanBasic); got != 250 {
		t.Errorf("QuotaFor(basic) = %d, want 250", got)
	}
	if got := c.QuotaFor(PlanNone); got != 0 {
		t.Errorf("QuotaFor(none) = %d, want 0", got)
	}
	if got := c.QuotaFor(PlanBusiness); got != 1000 {
		t.Errorf("QuotaFor(business) = %d, want default 1000", got)
	}
}

func TestCatalogIdentifierMapping(t *testing.T) {
	c := NewCatalog(nil,
		map[string]string{"price_basic_live": "basic", "price_biz_live": "business"},
		map[string]string{"prod_ent": "enterprise"},
	)

	if got := c.PlanForPriceID("price_basic_live"); got != PlanBasic {
		t.Errorf("PlanForPriceID = %v, want basic", got)
	}
	if got := c.PlanForPriceID("price_unknown"); got != PlanNone {
		t.Errorf("PlanForPriceID(unknown) = %v, want none", got)
	}
	if got := c.PlanForProductID("prod_ent"); got != PlanEnterprise {
		t.Errorf("PlanForProductID = %v, want enterprise", got)
	}
}

func TestCatalogPlanForItems(t *testing.T) {
	c := NewCatalog(nil,
		map[string]string{"price_basic": "basic", "price_biz": "business"},
		map[string]string{"prod_ent": "enterprise"},
	)

	tests := []struct {
		name  string
		items []SubscriptionItem
		want  Plan
	}{
		{
			name: "highest tier wins",
			items: []SubscriptionItem{
				{PriceID: "price_basic"},
				{PriceID: "price_biz"},
			},
			want: PlanBusiness,
		},
		{
			name: "product fallback when price unmapped",
			items: []SubscriptionItem{
				{PriceID: "price_unknown", ProductID: "prod_ent"},
			},
			want: PlanEnterprise,
		},
		{
			name:  "nothing mapped",
			items: []SubscriptionItem{{PriceID: "x", ProductID: "y"}},
			want:  PlanNone,
		},
		{
			name:  "no items",
			items: nil,
			want:  PlanNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.PlanForItems(tt.items); got != tt.want {
				t.Errorf("PlanForItems = %v, want %v", got, tt.want)
			}
		})
	}
}
