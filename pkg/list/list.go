// Package list implements a small singly linked list. The split protocol
// uses it to snapshot a bucket's tuples (primary page, then each overflow
// page in chain order) before clearing and re-inserting them.
package list

// List is a singly linked list of arbitrary values.
type List struct {
	head *Link
	tail *Link
}

// NewList returns a new, empty List.
func NewList() *List {
	return &List{}
}

// PeekHead returns the list's first link, or nil if the list is empty.
func (list *List) PeekHead() *Link {
	return list.head
}

// PushTail appends value to the end of the list and returns its Link.
func (list *List) PushTail(value any) *Link {
	newlink := &Link{value: value}
	if list.tail != nil {
		list.tail.next = newlink
	}
	list.tail = newlink
	if list.head == nil {
		list.head = newlink
	}
	return newlink
}

// Map applies f to every link in the list, in head-to-tail order.
func (list *List) Map(f func(*Link)) {
	for link := list.head; link != nil; link = link.next {
		f(link)
	}
}

// Len counts the links currently in the list.
func (list *List) Len() int {
	n := 0
	list.Map(func(*Link) { n++ })
	return n
}

// Link is one node of a List.
type Link struct {
	next  *Link
	value any
}

// GetValue returns the link's stored value.
func (link *Link) GetValue() any {
	return link.value
}

// GetNext returns the next link in the list, or nil at the tail.
func (link *Link) GetNext() *Link {
	return link.next
}
