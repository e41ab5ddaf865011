package domain

import "encoding/json"

// Ключи документа node, которые сервис понимает явно.
// Остальные поля документа сохраняются в Node.Extra как есть.
const (
	FieldID          = "id"
	FieldDisplayName = "displayName"
	FieldIconURL     = "iconUrl"
	FieldCredentials = "credentials"
)

// Node — документ из коллекции nodes.
//
// Документ бессхемный: гарантированы только id и displayName,
// всё остальное приходит из внешнего процесса наполнения каталога
// и возвращается клиенту без изменений.
type Node struct {
	// ID — идентификатор, назначенный хранилищем (UUID или ObjectID hex).
	ID string

	// DisplayName — человекочитаемое имя. Не уникально.
	DisplayName string

	// IconURL — ссылка на иконку, может быть пустой.
	IconURL string

	// Credentials — упорядоченный список credentials. nil, если поле отсутствует.
	Credentials []Credential

	// Extra — прочие поля документа.
	Extra map[string]any
}

// Credential — элемент массива credentials.
type Credential struct {
	// Name — имя типа credential. Может повторяться между nodes.
	Name string

	// Extra — прочие поля элемента.
	Extra map[string]any
}

// NodeSummary — проекция node на {id, displayName, iconUrl}.
type NodeSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	IconURL     string `json:"iconUrl,omitempty"`
}

// Summary возвращает проекцию node.
func (n Node) Summary() NodeSummary {
	return NodeSummary{
		ID:          n.ID,
		DisplayName: n.DisplayName,
		IconURL:     n.IconURL,
	}
}

// CredentialNames возвращает имена credentials в порядке массива.
func (n Node) CredentialNames() []string {
	names := make([]string, 0, len(n.Credentials))
	for _, c := range n.Credentials {
		names = append(names, c.Name)
	}
	return names
}

// MarshalJSON собирает документ обратно: известные поля поверх Extra.
//
// Если известное поле лежит в Extra, значит в документе было значение,
// которое типизированное поле не выражает; оно уходит клиенту как есть.
func (n Node) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(n.Extra)+4)
	for k, v := range n.Extra {
		doc[k] = v
	}
	doc[FieldID] = n.ID
	if _, raw := n.Extra[FieldDisplayName]; !raw {
		doc[FieldDisplayName] = n.DisplayName
	}
	if _, raw := n.Extra[FieldIconURL]; !raw && n.IconURL != "" {
		doc[FieldIconURL] = n.IconURL
	}
	if _, raw := n.Extra[FieldCredentials]; !raw && n.Credentials != nil {
		doc[FieldCredentials] = n.Credentials
	}
	return json.Marshal(doc)
}

// UnmarshalJSON разбирает произвольный документ node.
func (n *Node) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*n = NodeFromDocument(doc)
	return nil
}

// NodeFromDocument строит Node из декодированного документа.
//
// Документ бессхемный, поэтому разбор не падает на неожиданных типах:
//   - id не строкой игнорируется, идентификатор проставляет хранилище;
//   - displayName или iconUrl не строкой, а также пустой iconUrl
//     сохраняются в Extra дословно;
//   - credentials не массивом (в том числе null) сохраняется в Extra,
//     Credentials остаётся nil;
//   - массив credentials с элементами не объектами сохраняется в Extra
//     целиком, в Credentials попадают только объекты.
func NodeFromDocument(doc map[string]any) Node {
	var n Node
	keep := func(k string, v any) {
		if n.Extra == nil {
			n.Extra = make(map[string]any)
		}
		n.Extra[k] = v
	}

	if s, ok := doc[FieldID].(string); ok {
		n.ID = s
	}

	if v, ok := doc[FieldDisplayName]; ok {
		if s, isStr := v.(string); isStr {
			n.DisplayName = s
		} else {
			keep(FieldDisplayName, v)
		}
	}
	if v, ok := doc[FieldIconURL]; ok {
		if s, isStr := v.(string); isStr && s != "" {
			n.IconURL = s
		} else {
			keep(FieldIconURL, v)
		}
	}

	if raw, ok := doc[FieldCredentials]; ok {
		items, isArr := raw.([]any)
		if !isArr {
			keep(FieldCredentials, raw)
		} else {
			n.Credentials = make([]Credential, 0, len(items))
			for _, item := range items {
				m, isObj := item.(map[string]any)
				if !isObj {
					keep(FieldCredentials, raw)
					continue
				}
				n.Credentials = append(n.Credentials, credentialFromMap(m))
			}
		}
	}

	for k, v := range doc {
		switch k {
		case FieldID, FieldDisplayName, FieldIconURL, FieldCredentials:
			continue
		}
		keep(k, v)
	}

	return n
}

// MarshalJSON собирает элемент credentials.
func (c Credential) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(c.Extra)+1)
	for k, v := range c.Extra {
		doc[k] = v
	}
	doc["name"] = c.Name
	return json.Marshal(doc)
}

// UnmarshalJSON разбирает элемент credentials.
func (c *Credential) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*c = credentialFromMap(m)
	return nil
}

func credentialFromMap(m map[string]any) Credential {
	c := Credential{Name: stringField(m, "name")}
	for k, v := range m {
		if k == "name" {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[k] = v
	}
	return c
}

// stringField возвращает строковое поле или "" если поля нет либо оно не строка.
func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
