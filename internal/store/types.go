package store

type Category struct {
	ID          int64
	Name        string
	DisplayName string
	Description *string
}

type ComponentType struct {
	ID          int64
	CategoryID  int64
	Name        string
	DisplayName string
}

type Component struct {
	ID             int64
	TypeID         int64
	Name           string
	DisplayName    string
	SourceFile     string
	MatchBodyColor bool
}

type ComponentSummary struct {
	ID           int64
	Name         string
	DisplayName  string
	TypeID       int64
	TypeName     string
	CategoryName string
}

type Variant struct {
	ID          int64
	Name        string
	DisplayName string
}

type Animation struct {
	ID          int64
	Name        string
	DisplayName string
	FrameCount  int
}

type BodyType struct {
	ID          int64
	Name        string
	DisplayName string
}

type LayerRef struct {
	LayerNumber     int
	ZPosition       int
	Path            string
	CustomAnimation *string
}

type AssetRef struct {
	FilePath    string
	ZPosition   int
	LayerNumber int
}

type Credit struct {
	Notes    string
	Authors  []string
	Licenses []string
	URLs     []string
}

type AnimationInput struct {
	Name       string
	FrameCount int
}

type LayerInput struct {
	Number          int
	ZPosition       int
	CustomAnimation string
	Paths           map[string]string
}

type CreditInput struct {
	Notes    string
	Authors  []string
	Licenses []string
	URLs     []string
}

type ComponentInput struct {
	Name           string
	DisplayName    string
	Category       string
	TypeName       string
	SourceFile     string
	SourceHash     string
	RawDefinition  string
	MatchBodyColor bool
	Variants       []string
	Animations     []AnimationInput
	Tags           []string
	Layers         []LayerInput
	Credits        []CreditInput
}
