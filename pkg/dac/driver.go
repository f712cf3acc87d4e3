package dac

import (
	"flag"
	"fmt"
	"sort"
	"strconv"
)

// DriverOption is a DAC driver option. Options are exposed as command
// line flags by RegisterFlags.
type DriverOption struct {
	Name        string // name of the option
	Default     any    // default value of the option
	Value       any    // pointer to the value of the option
	Description string // description of the option
	Type        string // "int", "bool", "string", "float"
}

// InstalledDriver is a driver that has been installed under a name.
type InstalledDriver struct {
	Name    string
	Options []DriverOption
	DAC
}

// InstalledDrivers lists every installed driver in installation order.
// Drivers should call Install in their init() function.
var InstalledDrivers []*InstalledDriver

// GetDriver returns the driver with the given name, or nil if no driver
// with that name is installed. "auto" selects the first driver installed.
func GetDriver(name string) DAC {
	if name == "auto" {
		if len(InstalledDrivers) == 0 {
			return nil
		}
		return InstalledDrivers[0].DAC
	}
	for _, driver := range InstalledDrivers {
		if driver.Name == name {
			return driver.DAC
		}
	}

	return nil
}

// DriverNames returns the names of every installed driver.
func DriverNames() []string {
	names := make([]string, 0, len(InstalledDrivers))
	for _, d := range InstalledDrivers {
		names = append(names, d.Name)
	}
	return names
}

// Install registers a DAC driver with the given name.
func Install(name string, driver DAC, options []DriverOption) {
	if InstalledDrivers == nil {
		InstalledDrivers = make([]*InstalledDriver, 0)
	}

	InstalledDrivers = append(InstalledDrivers, &InstalledDriver{
		Name:    name,
		Options: options,
		DAC:     driver,
	})
}

// RegisterFlags registers the options of every installed driver with fs.
// Options unique to one driver are prefixed with the driver name; options
// shared by several drivers become a single flag setting all of them.
func RegisterFlags(fs *flag.FlagSet) {
	optionCounts := make(map[string]int)
	opts := make(map[string][]DriverOption)
	prefixes := make(map[string]string)

	for _, driver := range InstalledDrivers {
		for _, opt := range driver.Options {
			// track how many times an option is used
			optionCounts[opt.Name]++
			opts[opt.Name] = append(opts[opt.Name], opt)
			prefixes[opt.Name] = driver.Name
		}
	}

	names := make([]string, 0, len(optionCounts))
	for o := range optionCounts {
		names = append(names, o)
	}
	sort.Strings(names)

	for _, o := range names {
		opt := opts[o][0]
		if optionCounts[o] > 1 {
			multi := &multiValue{defaultValue: opt.Default}
			for _, mOpt := range opts[o] {
				multi.values = append(multi.values, mOpt.Value)
				if err := assign(mOpt.Value, fmt.Sprint(opt.Default)); err != nil {
					panic(fmt.Sprintf("dac: option %s: %v", o, err))
				}
			}
			fs.Var(multi, o, opt.Description)
			continue
		}

		// this option is unique and should be prefixed
		optName := fmt.Sprintf("%s-%s", prefixes[o], opt.Name)
		switch opt.Type {
		case "string":
			fs.StringVar(opt.Value.(*string), optName, opt.Default.(string), opt.Description)
		case "bool":
			fs.BoolVar(opt.Value.(*bool), optName, opt.Default.(bool), opt.Description)
		case "float":
			fs.Float64Var(opt.Value.(*float64), optName, opt.Default.(float64), opt.Description)
		case "int":
			fs.IntVar(opt.Value.(*int), optName, opt.Default.(int), opt.Description)
		}
	}
}

type multiValue struct {
	values       []any
	defaultValue any
}

func (m *multiValue) String() string {
	if m == nil || m.defaultValue == nil {
		return ""
	}
	return fmt.Sprint(m.defaultValue)
}

func (m *multiValue) Set(value string) error {
	// update all the pointers with the provided value
	for _, ptr := range m.values {
		if err := assign(ptr, value); err != nil {
			return err
		}
	}

	return nil
}

func (m *multiValue) IsBoolFlag() bool {
	_, isBool := m.defaultValue.(bool)
	return isBool
}

func assign(ptr any, value string) error {
	switch p := ptr.(type) {
	case *string:
		*p = value
	case *bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		*p = b
	case *float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		*p = f
	case *int:
		i, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*p = i
	default:
		return fmt.Errorf("unknown type: %T", ptr) // should never happen, but just in case...
	}
	return nil
}
