package model

// Todo - одна запись списка дел
type Todo struct {
	ID        int64   `json:"id" validate:"gte=0,lte=2147483647"`
	Title     *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Completed bool    `json:"completed"`
	Order     *int    `json:"order,omitempty" validate:"omitempty,gte=-2147483648,lte=2147483647"`
	URL       string  `json:"url,omitempty"`
}

// TodoPatch - тело PATCH запроса. nil означает "поле не передано".
type TodoPatch struct {
	ID        *int64  `json:"id,omitempty"`
	Title     *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Completed *bool   `json:"completed,omitempty"`
	Order     *int    `json:"order,omitempty" validate:"omitempty,gte=-2147483648,lte=2147483647"`
	URL       *string `json:"url,omitempty"`
}

// Empty сообщает, что в патче нет ни одного поля, которое участвует в слиянии.
func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Completed == nil && p.Order == nil
}

// Merge накладывает патч на запись. ID и URL патчем не меняются.
func (t Todo) Merge(p TodoPatch) Todo {
	merged := t
	if p.Title != nil {
		title := *p.Title
		merged.Title = &title
	}
	if p.Completed != nil {
		merged.Completed = *p.Completed
	}
	if p.Order != nil {
		order := *p.Order
		merged.Order = &order
	}
	return merged
}

// Clone возвращает копию без общих указателей.
func (t Todo) Clone() Todo {
	c := t
	if t.Title != nil {
		title := *t.Title
		c.Title = &title
	}
	if t.Order != nil {
		order := *t.Order
		c.Order = &order
	}
	return c
}

func StringPtr(s string) *string { return &s }

func IntPtr(i int) *int { return &i }

func BoolPtr(b bool) *bool { return &b }
