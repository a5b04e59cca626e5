package cli

import (
	"fmt"
	"strconv"

	"github.com/jrsteele09/estate-client/guard"
	"github.com/jrsteele09/estate-client/properties"
	"github.com/spf13/cobra"
)

func newPropertiesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "properties",
		Aliases: []string{"props"},
		Short:   "Browse and manage property listings",
	}

	var filter properties.Filter
	list := &cobra.Command{Use: "list", Short: "List properties", Args: cobra.NoArgs}
	list.Flags().StringVarP(&filter.Search, "search", "s", "", "free text search")
	list.Flags().StringVar(&filter.PropertyType, "type", "", "property type")
	list.Flags().StringVar(&filter.Emirate, "emirate", "", "emirate")
	list.Flags().StringVar(&filter.Area, "area", "", "area or community")
	list.Flags().Float64Var(&filter.MinPrice, "min-price", 0, "minimum price")
	list.Flags().Float64Var(&filter.MaxPrice, "max-price", 0, "maximum price")
	list.Flags().IntVar(&filter.MinBedrooms, "min-bedrooms", 0, "minimum bedrooms")
	list.Flags().IntVarP(&filter.Limit, "limit", "n", 0, "max results")
	list.RunE = app.guarded(guard.PropertiesRoute, func(cmd *cobra.Command, args []string) error {
		props, err := app.properties.List(cmd.Context(), filter)
		if err != nil {
			return err
		}
		if len(props) == 0 {
			app.println("No properties found.")
			return nil
		}
		for _, p := range props {
			app.printf("%5d  %-40s  %-10s  AED %s\n", p.ID, p.Title, p.PropertyType, strconv.FormatFloat(p.Price, 'f', 0, 64))
		}
		return nil
	})

	get := &cobra.Command{Use: "get <id>", Short: "Show one property", Args: cobra.ExactArgs(1)}
	get.RunE = app.guarded(guard.PropertiesRoute, func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		p, err := app.properties.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		app.printf("%s\n  %s\n  type: %s  price: AED %s\n", p.Title, p.Address, p.PropertyType, strconv.FormatFloat(p.Price, 'f', 0, 64))
		if p.Description != "" {
			app.printf("  %s\n", p.Description)
		}
		return nil
	})

	var in propertyFlags
	create := &cobra.Command{Use: "create", Short: "Add a listing", Args: cobra.NoArgs}
	in.register(create)
	create.RunE = app.guarded(guard.PropertyEditRoute, func(cmd *cobra.Command, args []string) error {
		p, err := app.properties.Create(cmd.Context(), in.input(cmd))
		if err != nil {
			return err
		}
		app.printf("Created property %d.\n", p.ID)
		return nil
	})

	var upd propertyFlags
	update := &cobra.Command{Use: "update <id>", Short: "Change a listing", Args: cobra.ExactArgs(1)}
	upd.register(update)
	update.RunE = app.guarded(guard.PropertyEditRoute, func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		p, err := app.properties.Update(cmd.Context(), id, upd.input(cmd))
		if err != nil {
			return err
		}
		app.printf("Updated property %d.\n", p.ID)
		return nil
	})

	del := &cobra.Command{Use: "delete <id>", Short: "Remove a listing", Args: cobra.ExactArgs(1)}
	del.RunE = app.guarded(guard.PropertyEditRoute, func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := app.properties.Delete(cmd.Context(), id); err != nil {
			return err
		}
		app.printf("Deleted property %d.\n", id)
		return nil
	})

	cmd.AddCommand(list, get, create, update, del)
	return cmd
}

type propertyFlags struct {
	title, address, description, propertyType, emirate, area string
	price                                                    float64
	bedrooms                                                 int
}

func (f *propertyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "listing title")
	cmd.Flags().StringVar(&f.address, "address", "", "address")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.propertyType, "type", "", "property type")
	cmd.Flags().StringVar(&f.emirate, "emirate", "", "emirate")
	cmd.Flags().StringVar(&f.area, "area", "", "area or community")
	cmd.Flags().Float64Var(&f.price, "price", 0, "asking price in AED")
	cmd.Flags().IntVar(&f.bedrooms, "bedrooms", 0, "bedrooms")
}

// input includes only the flags that were set on the command line.
func (f *propertyFlags) input(cmd *cobra.Command) properties.Input {
	var in properties.Input
	str := func(name, v string) *string {
		if cmd.Flags().Changed(name) {
			return &v
		}
		return nil
	}
	in.Title = str("title", f.title)
	in.Address = str("address", f.address)
	in.Description = str("description", f.description)
	in.PropertyType = str("type", f.propertyType)
	in.Emirate = str("emirate", f.emirate)
	in.Area = str("area", f.area)
	if cmd.Flags().Changed("price") {
		price := f.price
		in.Price = &price
	}
	if cmd.Flags().Changed("bedrooms") {
		bedrooms := f.bedrooms
		in.Bedrooms = &bedrooms
	}
	return in
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
