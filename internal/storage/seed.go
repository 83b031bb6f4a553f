package storage

import "time"

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func photo(path string) string {
	return "https://images.pexels.com/photos/" + path + "?auto=compress&cs=tinysrgb&w=800"
}

// seedSnapshot returns the demo data shown on a fresh installation
func seedSnapshot() *snapshot {
	properties := []Property{
		{
			ID:        1,
			Title:     "Luxury 2BHK Apartment in Bandra",
			Location:  "Bandra West, Mumbai",
			Price:     45000,
			Type:      TypeApartment,
			Bedrooms:  2,
			Bathrooms: 2,
			Area:      1200,
			Images: []string{
				photo("1080721/pexels-photo-1080721.jpeg"),
				photo("1457842/pexels-photo-1457842.jpeg"),
				photo("1571460/pexels-photo-1571460.jpeg"),
			},
			Amenities:   []string{"Parking", "Gym", "Swimming Pool", "Security", "Lift"},
			Description: "Beautiful 2BHK apartment with modern amenities in prime Bandra location. Fully furnished with all necessary appliances and furniture.",
			Owner:       Owner{Name: "Rajesh Sharma", Phone: "+91 9876543210", Email: "rajesh@email.com"},
			Available:   true,
			Furnishing:  FullyFurnished,
			CreatedAt:   mustTime("2024-01-15T00:00:00Z"),
			Status:      StatusActive,
		},
		{
			ID:        2,
			Title:     "Spacious 3BHK House in Koramangala",
			Location:  "Koramangala, Bangalore",
			Price:     35000,
			Type:      TypeHouse,
			Bedrooms:  3,
			Bathrooms: 3,
			Area:      1800,
			Images: []string{
				photo("1396122/pexels-photo-1396122.jpeg"),
				photo("1643383/pexels-photo-1643383.jpeg"),
			},
			Amenities:   []string{"Parking", "Garden", "Security", "Power Backup"},
			Description: "Independent house with garden and parking. Perfect for families looking for a quiet neighborhood with good connectivity.",
			Owner:       Owner{Name: "Priya Reddy", Phone: "+91 9876543211", Email: "priya@email.com"},
			Available:   true,
			Furnishing:  SemiFurnished,
			CreatedAt:   mustTime("2024-01-14T00:00:00Z"),
			Status:      StatusActive,
		},
		{
			ID:        3,
			Title:     "Modern 1BHK Studio in Gurgaon",
			Location:  "Cyber City, Gurgaon",
			Price:     28000,
			Type:      TypeStudio,
			Bedrooms:  1,
			Bathrooms: 1,
			Area:      600,
			Images: []string{
				photo("1571463/pexels-photo-1571463.jpeg"),
				photo("1080696/pexels-photo-1080696.jpeg"),
			},
			Amenities:   []string{"Parking", "Gym", "Lift", "Security", "Power Backup"},
			Description: "Modern studio apartment perfect for young professionals. Located in the heart of Cyber City with excellent connectivity.",
			Owner:       Owner{Name: "Amit Kumar", Phone: "+91 9876543212", Email: "amit@email.com"},
			Available:   true,
			Furnishing:  FullyFurnished,
			CreatedAt:   mustTime("2024-01-13T00:00:00Z"),
			Status:      StatusActive,
		},
		{
			ID:        4,
			Title:     "Cozy 2BHK Flat in Pune",
			Location:  "Hinjewadi, Pune",
			Price:     22000,
			Type:      TypeApartment,
			Bedrooms:  2,
			Bathrooms: 2,
			Area:      1000,
			Images: []string{
				photo("1457847/pexels-photo-1457847.jpeg"),
				photo("1571468/pexels-photo-1571468.jpeg"),
			},
			Amenities:   []string{"Parking", "Gym", "Swimming Pool", "Security"},
			Description: "Well-maintained 2BHK flat in a gated community. Close to IT parks and shopping centers.",
			Owner:       Owner{Name: "Sneha Patil", Phone: "+91 9876543213", Email: "sneha@email.com"},
			Available:   true,
			Furnishing:  SemiFurnished,
			CreatedAt:   mustTime("2024-01-12T00:00:00Z"),
			Status:      StatusActive,
		},
	}

	// message ids are global in the store, the demo ones only have to be distinct
	chats := []Chat{
		withDerived(Chat{
			ID:         1,
			PropertyID: 1,
			OwnerName:  "Rajesh Sharma",
			Messages: []Message{
				{ID: 1, Text: "Hi, I'm interested in your 2BHK apartment in Bandra", Sender: SenderUser, Timestamp: mustTime("2024-01-15T10:30:00Z")},
				{ID: 2, Text: "Hello! Thank you for your interest. Would you like to schedule a visit?", Sender: SenderOwner, Timestamp: mustTime("2024-01-15T10:35:00Z")},
				{ID: 3, Text: "Yes, I would love to visit. When would be a good time?", Sender: SenderUser, Timestamp: mustTime("2024-01-15T10:40:00Z")},
			},
			UnreadCount: 0,
		}),
		withDerived(Chat{
			ID:         2,
			PropertyID: 2,
			OwnerName:  "Priya Reddy",
			Messages: []Message{
				{ID: 4, Text: "Is the house still available?", Sender: SenderUser, Timestamp: mustTime("2024-01-14T14:20:00Z")},
				{ID: 5, Text: "Yes, it's still available. Would you like to know more details?", Sender: SenderOwner, Timestamp: mustTime("2024-01-14T14:25:00Z")},
			},
			UnreadCount: 1,
		}),
	}

	services := []Service{
		{ID: 1, Name: "Packers & Movers", Description: "Professional moving services for hassle-free relocation", Icon: "🚚", Price: "Starting from ₹5,000", Rating: 4.8, Providers: []string{"XYZ Packers", "ABC Movers", "Quick Move"}},
		{ID: 2, Name: "Home Cleaning", Description: "Deep cleaning services for your new home", Icon: "🧹", Price: "Starting from ₹2,000", Rating: 4.6, Providers: []string{"CleanPro", "Sparkle Clean", "Fresh Home"}},
		{ID: 3, Name: "Painting Services", Description: "Professional painting and renovation services", Icon: "🎨", Price: "Starting from ₹15,000", Rating: 4.7, Providers: []string{"Paint Masters", "Color Craft", "Perfect Paint"}},
		{ID: 4, Name: "Electrician", Description: "Electrical installation and repair services", Icon: "⚡", Price: "Starting from ₹500", Rating: 4.5, Providers: []string{"Power Fix", "Bright Electric", "Spark Solutions"}},
		{ID: 5, Name: "Plumbing Services", Description: "Plumbing installation and repair services", Icon: "🔧", Price: "Starting from ₹800", Rating: 4.4, Providers: []string{"Pipe Pro", "Flow Fix", "Aqua Solutions"}},
		{ID: 6, Name: "Furniture Assembly", Description: "Professional furniture assembly and installation", Icon: "🪑", Price: "Starting from ₹1,500", Rating: 4.6, Providers: []string{"Furniture Fix", "Assembly Pro", "Setup Solutions"}},
	}

	return &snapshot{
		properties: properties,
		chats:      chats,
		services:   services,
	}
}
