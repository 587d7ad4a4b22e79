package schema

var (
	registry = map[string]Schema{}
	order    []string
)

func register(s Schema) {
	if _, dup := registry[s.Collection]; dup {
		panic("schema: duplicate collection " + s.Collection)
	}
	registry[s.Collection] = s
	order = append(order, s.Collection)
}

func id() Field {
	return Field{Name: IDField, Type: TypeInteger, Required: true}
}

func ref(name, target string) Field {
	return Field{Name: name, Type: TypeInteger, Required: true, References: target}
}

func minimum(v float64) *float64 {
	return &v
}

func str(name string) Field {
	return Field{Name: name, Type: TypeString, Required: true}
}

func init() {
	register(Schema{
		Collection: Users,
		Fields: []Field{
			id(),
			{Name: "username", Type: TypeString, Required: true, Unique: true},
			str("first_name"),
			{Name: "middle_name", Type: TypeString},
			str("last_name"),
			str("email_address"),
			str("mobile_number"),
			{Name: "status", Type: TypeString, Required: true, Enum: []string{"active", "inactive"}},
			{Name: "user_type", Type: TypeString, Required: true, Enum: []string{"User", "admin"}},
		},
	})

	register(Schema{
		Collection: Admins,
		Fields: []Field{
			id(),
			{Name: "user_id", Type: TypeInteger, Required: true, References: Users,
				RefMatch: map[string]string{"user_type": "admin"}},
			{Name: "created_on", Type: TypeTimestamp, Required: true, AutoNow: true},
			{Name: "last_modified_on", Type: TypeTimestamp, Required: true, AutoNow: true},
		},
	})

	register(Schema{
		Collection: Categories,
		Fields: []Field{
			id(),
			str("name"),
			str("description"),
			ref("created_by", Admins),
			ref("last_modified_by", Admins),
		},
	})

	register(Schema{
		Collection: Items,
		Fields: []Field{
			id(),
			str("name"),
			{Name: "price", Type: TypeDecimal, Required: true, Min: minimum(0), Precision: 14, Scale: 2},
			str("size"),
			ref("category_id", Categories),
			ref("created_by", Admins),
			ref("last_modified_by", Admins),
			{Name: "image_key", Type: TypeString},
		},
	})

	register(Schema{
		Collection: Orders,
		Fields: []Field{
			id(),
			ref("user_id", Users),
			ref("item_id", Items),
			{Name: "status", Type: TypeString, Required: true, Enum: []string{"Pending", "Approved", "Rejected"}},
			{Name: "quantity", Type: TypeInteger, Required: true, Min: minimum(1)},
			{Name: "treated_by", Type: TypeInteger, Nullable: true, References: Admins},
			{Name: "treated_on", Type: TypeTimestamp, Nullable: true},
		},
	})
}
