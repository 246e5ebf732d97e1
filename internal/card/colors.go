package card

import "strings"

// TypeColor holds the base and darker shade for one of the 18 canonical
// type categories. The table is the single source of truth for theming;
// both the raster renderer and the HTML embed card consume it.
type TypeColor struct {
	Base string
	Dark string
}

var typeColors = map[string]TypeColor{
	"normal":   {Base: "#A8A77A", Dark: "#6D6D4E"},
	"fire":     {Base: "#EE8130", Dark: "#9C531F"},
	"water":    {Base: "#6390F0", Dark: "#445E9C"},
	"electric": {Base: "#F7D02C", Dark: "#A1871F"},
	"grass":    {Base: "#7AC74C", Dark: "#4E8234"},
	"ice":      {Base: "#96D9D6", Dark: "#638D8B"},
	"fighting": {Base: "#C22E28", Dark: "#7D1F1A"},
	"poison":   {Base: "#A33EA1", Dark: "#6B2669"},
	"ground":   {Base: "#E2BF65", Dark: "#927D44"},
	"flying":   {Base: "#A98FF3", Dark: "#6D5E9C"},
	"psychic":  {Base: "#F95587", Dark: "#A13959"},
	"bug":      {Base: "#A6B91A", Dark: "#6D7815"},
	"rock":     {Base: "#B6A136", Dark: "#786824"},
	"ghost":    {Base: "#735797", Dark: "#493963"},
	"dragon":   {Base: "#6F35FC", Dark: "#4924A1"},
	"dark":     {Base: "#705746", Dark: "#49392F"},
	"steel":    {Base: "#B7B7CE", Dark: "#787887"},
	"fairy":    {Base: "#D685AD", Dark: "#9B6470"},
}

// ColorFor looks up the color pair for a type name (any casing). Unknown
// types fall back to the neutral normal-type palette.
func ColorFor(typeName string) TypeColor {
	if tc, ok := typeColors[strings.ToLower(typeName)]; ok {
		return tc
	}
	return typeColors["normal"]
}
