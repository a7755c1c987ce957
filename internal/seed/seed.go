package seed

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type category struct {
	id, name, icon string
	position       int
}

type product struct {
	id, name, description string
	price                 int64
	categoryID            string
	rating                float64
	calories              int
	tagType               string
}

type coupon struct {
	id, title, kind string
	amount          float64
	minSpend        int64
	description     string
}

var categories = []category{
	{"hot", "Popular", "local_fire_department", 0},
	{"main", "Signature Mains", "lunch_dining", 1},
	{"dessert", "Desserts", "icecream", 2},
	{"drink", "Drinks", "local_cafe", 3},
}

var products = []product{
	{"1", "Spicy Tuna Poke Bowl", "Fresh-caught tuna with avocado, nori, sesame and house chili sauce.", 800, "hot", 4.8, 450, "hot"},
	{"2", "Avocado Sourdough Toast", "Daily-baked sourdough piled with smashed avocado, microgreens and crushed nuts.", 450, "hot", 4.9, 320, "new"},
	{"3", "Grilled Salmon Bowl", "Omega-3 rich salmon over quinoa and kale with a lemon dressing.", 1200, "main", 4.7, 550, ""},
	{"4", "Mango Paradise", "Seasonal ripe mango blended with coconut milk, topped with chia seeds.", 350, "dessert", 4.6, 280, ""},
	{"5", "Classic Caesar Salad", "Grilled chicken breast, crisp romaine, parmesan shavings and house croutons.", 650, "main", 4.5, 380, ""},
	{"6", "Berry Acai Bowl", "Acai base loaded with strawberries, blueberries and crunchy granola.", 550, "dessert", 4.8, 310, ""},
	{"7", "Poached Egg Sourdough", "Fresh yeast bread with a runny poached egg and house herb sauce.", 450, "main", 4.7, 340, ""},
	{"8", "Pepperoni Pizza", "Classic thin crust loaded with mozzarella and spicy pepperoni.", 620, "main", 4.6, 780, ""},
	{"9", "Uji Matcha Latte", "Premium matcha whisked into silky fresh milk.", 350, "drink", 4.5, 180, ""},
}

var coupons = []coupon{
	{"c1", "Newcomer Pack", "deduction", 50, 0, "Flat points off, no minimum"},
	{"c2", "Mains Special", "deduction", 100, 500, "Valid on orders of 500 points or more"},
	{"c3", "Drinks 20% Off", "discount", 0.8, 0, "Valid on every drink"},
}

// Apply loads the demo catalog, coupons and demo user. Inserts are
// conflict-free so seeding is safe to rerun.
func Apply(ctx context.Context, db *sqlx.DB, demoUserID string) error {
	for _, c := range categories {
		_, err := db.ExecContext(ctx, `
			INSERT INTO categories (id, name, icon, position)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING`,
			c.id, c.name, c.icon, c.position)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.id, err)
		}
	}

	for _, p := range products {
		_, err := db.ExecContext(ctx, `
			INSERT INTO products (id, name, description, price, category_id, rating, calories, tag_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING`,
			p.id, p.name, p.description, p.price, p.categoryID, p.rating, p.calories, p.tagType)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.id, err)
		}
	}

	for _, c := range coupons {
		_, err := db.ExecContext(ctx, `
			INSERT INTO coupons (id, title, kind, amount, min_spend, description)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`,
			c.id, c.title, c.kind, c.amount, c.minSpend, c.description)
		if err != nil {
			return fmt.Errorf("seed coupon %s: %w", c.id, err)
		}
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, name, level, points)
		VALUES ($1, 'Alex', 'Gold', 5000)
		ON CONFLICT (id) DO NOTHING`,
		demoUserID)
	if err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}

	return nil
}
