package event

// Action is an intent derived from input. Global actions are handled by the
// controller, local ones by the page that queued them.
type Action interface{ isAction() }

type (
	Quit        struct{}
	NextTab     struct{}
	PreviousTab struct{}
	GoToSearch  struct{}
)

type (
	SubmitSearch      struct{}
	SelectResult      struct{ Index int }
	MoveCursor        struct{ Delta int }
	ChangeResultsPage struct{ Delta int }
	OpenChapter       struct{ Index int }
	ToggleOrder       struct{}
	CycleLanguage     struct{}
	NextPage          struct{}
	PrevPage          struct{}
)

func (Quit) isAction()              {}
func (NextTab) isAction()           {}
func (PreviousTab) isAction()       {}
func (GoToSearch) isAction()        {}
func (SubmitSearch) isAction()      {}
func (SelectResult) isAction()      {}
func (MoveCursor) isAction()        {}
func (ChangeResultsPage) isAction() {}
func (OpenChapter) isAction()       {}
func (ToggleOrder) isAction()       {}
func (CycleLanguage) isAction()     {}
func (NextPage) isAction()          {}
func (PrevPage) isAction()          {}

// IsGlobal reports whether a belongs to the controller rather than a page.
func IsGlobal(a Action) bool {
	switch a.(type) {
	case Quit, NextTab, PreviousTab, GoToSearch:
		return true
	}
	return false
}
