package household

// Device loads in kW, one catalog per room.
var defaultCatalog = []Room{
	{
		Name: "kitchen",
		Devices: []Device{
			{Name: "Fridge", Load: 0.2},
			{Name: "Microwave", Load: 1.2},
			{Name: "Oven", Load: 2.4},
			{Name: "Kettle", Load: 1.5},
			{Name: "Dishwasher", Load: 1.3},
			{Name: "Light", Load: 0.1},
		},
	},
	{
		Name: "living",
		Devices: []Device{
			{Name: "TV", Load: 0.4},
			{Name: "Lamp", Load: 0.1},
			{Name: "Gaming Console", Load: 0.2},
			{Name: "Sound System", Load: 0.3},
			{Name: "Air Conditioner", Load: 1.8},
			{Name: "Light", Load: 0.1},
		},
	},
	{
		Name: "laundry",
		Devices: []Device{
			{Name: "Wash Machine", Load: 1.0},
			{Name: "Dryer", Load: 2.0},
			{Name: "Iron", Load: 0.8},
			{Name: "Steam Press", Load: 0.7},
			{Name: "Steamer", Load: 0.5},
			{Name: "Light", Load: 0.1},
		},
	},
	{
		Name: "garage",
		Devices: []Device{
			{Name: "Battery", Load: 0.5},
			{Name: "Power Tools", Load: 1.2},
			{Name: "EV Charger", Load: 2.5},
		},
	},
}

// DefaultRooms returns a copy of the built-in room catalog
func DefaultRooms() []Room {
	out := make([]Room, len(defaultCatalog))
	for i, r := range defaultCatalog {
		out[i] = Room{Name: r.Name, Devices: append([]Device(nil), r.Devices...)}
	}
	return out
}
