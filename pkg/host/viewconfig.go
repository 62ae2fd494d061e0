package host

import "sync"

// AttributeConfig describes how one prop key is accepted by a view class.
type AttributeConfig struct {
	// Process transforms the value before it is sent. Optional.
	Process func(v any) any

	// Nested, when set and the value is a map, filters the map's keys
	// recursively against this table.
	Nested map[string]AttributeConfig
}

// ViewConfig is the attribute table of one host view class.
type ViewConfig struct {
	// ClassName is the view class passed to UpdateView.
	ClassName string

	// ValidAttributes lists accepted keys. A nil table accepts every key.
	ValidAttributes map[string]AttributeConfig
}

// ViewConfigs holds view configs keyed by host type.
// It is safe for concurrent use.
type ViewConfigs struct {
	mu      sync.RWMutex
	configs map[string]ViewConfig
}

// NewViewConfigs returns configs for the default host types.
func NewViewConfigs() *ViewConfigs {
	vc := &ViewConfigs{configs: make(map[string]ViewConfig)}
	for _, c := range defaultViewConfigs() {
		vc.configs[c.ClassName] = c
	}
	return vc
}

// Register adds or replaces the config for hostType.
func (vc *ViewConfigs) Register(hostType string, c ViewConfig) {
	if c.ClassName == "" {
		c.ClassName = hostType
	}
	vc.mu.Lock()
	vc.configs[hostType] = c
	vc.mu.Unlock()
}

// Lookup returns the config for hostType. Unknown types get a permissive
// config named after the type.
func (vc *ViewConfigs) Lookup(hostType string) ViewConfig {
	vc.mu.RLock()
	c, ok := vc.configs[hostType]
	vc.mu.RUnlock()
	if !ok {
		return ViewConfig{ClassName: hostType}
	}
	return c
}

// ProcessProps filters props against valid, applies per-key processors and
// recurses into nested tables. Accepted entries of the "style" map are
// also copied to the top level, since hosts read layout and style keys
// from the flat prop set.
func ProcessProps(props Props, valid map[string]AttributeConfig) Props {
	result := make(Props, len(props))
	for key, v := range props {
		cfg, ok := valid[key]
		if valid != nil && !ok {
			continue
		}

		if m, isMap := v.(map[string]any); isMap && cfg.Nested != nil {
			v = ProcessProps(m, cfg.Nested)
		}
		if cfg.Process != nil && v != nil {
			v = cfg.Process(v)
		}
		result[key] = v
	}

	if style, ok := result["style"].(map[string]any); ok {
		for k, v := range style {
			result[k] = v
		}
	}
	return result
}

var styleAttributes = map[string]AttributeConfig{
	"width": {}, "height": {}, "minWidth": {}, "minHeight": {}, "maxWidth": {}, "maxHeight": {},
	"flex": {}, "flexDirection": {}, "flexGrow": {}, "flexShrink": {}, "flexWrap": {},
	"alignItems": {}, "alignSelf": {}, "alignContent": {}, "justifyContent": {},
	"margin": {}, "marginTop": {}, "marginBottom": {}, "marginLeft": {}, "marginRight": {},
	"marginHorizontal": {}, "marginVertical": {},
	"padding": {}, "paddingTop": {}, "paddingBottom": {}, "paddingLeft": {}, "paddingRight": {},
	"paddingHorizontal": {}, "paddingVertical": {},
	"position": {}, "top": {}, "left": {}, "right": {}, "bottom": {},
	"backgroundColor": {}, "opacity": {}, "overflow": {}, "display": {},
	"borderWidth": {}, "borderColor": {}, "borderRadius": {},
	"color": {}, "fontSize": {}, "fontWeight": {}, "fontFamily": {}, "textAlign": {},
	"lineHeight": {},
}

func withAttrs(base map[string]AttributeConfig, extra map[string]AttributeConfig) map[string]AttributeConfig {
	out := make(map[string]AttributeConfig, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func defaultViewConfigs() []ViewConfig {
	common := map[string]AttributeConfig{
		"style":              {Nested: styleAttributes},
		"testID":             {},
		"nativeID":           {},
		"accessible":         {},
		"accessibilityLabel": {},
		"pointerEvents":      {},
		"onLayout":           {},
	}
	return []ViewConfig{
		{ClassName: View, ValidAttributes: withAttrs(common, nil)},
		{ClassName: Text, ValidAttributes: withAttrs(common, map[string]AttributeConfig{
			"numberOfLines": {},
			"selectable":    {},
		})},
		{ClassName: RawText, ValidAttributes: map[string]AttributeConfig{
			"text": {Process: func(v any) any {
				if s, ok := v.(string); ok {
					return s
				}
				return ""
			}},
		}},
		{ClassName: "RCTImageView", ValidAttributes: withAttrs(common, map[string]AttributeConfig{
			"src":        {},
			"source":     {},
			"resizeMode": {},
		})},
		{ClassName: "RCTSinglelineTextInputView", ValidAttributes: withAttrs(common, map[string]AttributeConfig{
			"value":        {},
			"placeholder":  {},
			"editable":     {},
			"keyboardType": {},
			"maxLength":    {},
		})},
		{ClassName: "RCTSwitch", ValidAttributes: withAttrs(common, map[string]AttributeConfig{
			"value":    {},
			"disabled": {},
		})},
	}
}
