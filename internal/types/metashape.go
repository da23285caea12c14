package types

// BootstrapMetashapes registers the static members spec §4.4/SPEC_FULL §3
// supplements onto int/float/string (orig:ovum/builtin.cpp's builtin type
// members, e.g. `int.max`). Values are carried as Dotable property types
// only here — internal/runtime (metashapeValue) supplies the actual constants.
func (f *Forge) BootstrapMetashapes(c Common) {
	f.RegisterMetashape(c.Int, &Shape{Dotable: &Dotable{
		Unknown: Closed,
		Properties: []Property{
			{Name: "min", Type: c.Int, Access: Get},
			{Name: "max", Type: c.Int, Access: Get},
		},
	}})
	f.RegisterMetashape(c.Float, &Shape{Dotable: &Dotable{
		Unknown: Closed,
		Properties: []Property{
			{Name: "min", Type: c.Float, Access: Get},
			{Name: "max", Type: c.Float, Access: Get},
			{Name: "nan", Type: c.Float, Access: Get},
			{Name: "infinity", Type: c.Float, Access: Get},
		},
	}})
	f.RegisterMetashape(c.String, &Shape{Dotable: &Dotable{
		Unknown: Closed,
		Properties: []Property{
			{Name: "empty", Type: c.String, Access: Get},
		},
	}})
}
