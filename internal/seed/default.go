package seed

import "github.com/shopspring/decimal"

func amount(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// Default returns the built-in demo fixture used when no seed file is
// configured.
func Default() *Data {
	return &Data{
		Restaurants: []Restaurant{
			{
				ID: 1, Name: "Pizza Palace", Cuisine: "Italian", Address: "123 Main St, City",
				DeliveryFee: amount("30"), MinimumOrderAmount: amount("200"),
				Menu: []MenuItem{
					{ID: 1, Name: "Margherita Pizza", Category: "Pizza", Price: amount("299")},
					{ID: 2, Name: "Pepperoni Pizza", Category: "Pizza", Price: amount("349")},
				},
			},
			{
				ID: 2, Name: "Burger King", Cuisine: "American", Address: "456 Oak Ave, City",
				DeliveryFee: amount("25"), MinimumOrderAmount: amount("150"),
				Menu: []MenuItem{
					{ID: 3, Name: "Chicken Burger", Category: "Burger", Price: amount("199")},
					{ID: 4, Name: "Beef Burger", Category: "Burger", Price: amount("249")},
				},
			},
			{
				ID: 3, Name: "Sushi Master", Cuisine: "Japanese", Address: "789 Pine St, City",
				DeliveryFee: amount("40"), MinimumOrderAmount: amount("300"),
				Menu: []MenuItem{
					{ID: 5, Name: "California Roll", Category: "Sushi", Price: amount("299")},
					{ID: 6, Name: "Salmon Sashimi", Category: "Sushi", Price: amount("399")},
				},
			},
		},
		DeliveryPeople: []DeliveryPerson{
			{ID: 1, Name: "John Doe", Contact: "9876543210"},
			{ID: 2, Name: "Jane Smith", Contact: "9876543211"},
			{ID: 3, Name: "Mike Johnson", Contact: "9876543212"},
		},
		Customers: []Customer{
			{ID: 1, Name: "Demo Customer", Email: "demo@example.com", Contact: "9000000001", Address: "42 Demo Street, City"},
		},
		Promotions: []Promotion{
			{
				Code: "WELCOME20", Name: "Welcome Offer", Description: "20% off on first order",
				DiscountPercentage: amount("20"), MinimumOrderAmount: amount("100"),
				ValidDays: 30, MaxUses: 100,
			},
			{
				Code: "SAVE50", Name: "Flat Discount", Description: "Rs. 50 off on orders above Rs. 300",
				DiscountAmount: amount("50"), MinimumOrderAmount: amount("300"),
				ValidDays: 15, MaxUses: 50,
			},
		},
	}
}
