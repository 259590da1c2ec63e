package shell

import (
	"bufio"
	"cityquad/common"
	"cityquad/importing"
	"cityquad/index"
	"fmt"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"io"
	"strconv"
)

const menu = `Choose an option:
1. Search for the nearest city
2. Delete a city
3. Search for cities within a radius
4. Search for a city
5. Add cities
0. Exit
Enter your choice: `

// Shell is the interactive menu on top of a tree. Input is read token-wise, so values may be separated by any
// whitespace including line breaks.
type Shell struct {
	tree    *index.QuadTree
	scanner *bufio.Scanner
	out     io.Writer
}

func New(tree *index.QuadTree, in io.Reader, out io.Writer) *Shell {
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanWords)

	return &Shell{
		tree:    tree,
		scanner: scanner,
		out:     out,
	}
}

// errEndOfInput signals that the input ended, or can't be read any further, while the shell waited for a value.
var errEndOfInput = errors.New("end of input")

// Run shows the menu until the user exits or the input ends. Only read errors of the input are returned, an oversized
// value ends the shell like the end of the input does.
func (s *Shell) Run() error {
	for {
		fmt.Fprint(s.out, menu)

		choice, err := s.nextToken()
		if err == errEndOfInput {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = s.searchNearest()
		case "2":
			err = s.delete()
		case "3":
			err = s.searchWithinRadius()
		case "4":
			err = s.search()
		case "5":
			err = s.addCities()
		case "0":
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice. Try again.")
		}

		if err == errEndOfInput {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *Shell) searchNearest() error {
	fmt.Fprint(s.out, "Enter coordinates: ")
	point, ok, err := s.nextPoint()
	if err != nil || !ok {
		return err
	}

	entities, distance := s.tree.SearchNearest(point)
	WriteNearest(s.out, entities, distance)
	return nil
}

func (s *Shell) delete() error {
	fmt.Fprint(s.out, "Enter coordinates of the city to delete: ")
	point, ok, err := s.nextPoint()
	if err != nil || !ok {
		return err
	}

	entity, deleted := s.tree.Delete(point)
	WriteDeleted(s.out, entity, deleted)
	return nil
}

func (s *Shell) searchWithinRadius() error {
	fmt.Fprint(s.out, "Enter center point coordinates and radius: ")
	point, ok, err := s.nextPoint()
	if err != nil || !ok {
		return err
	}

	radiusToken, err := s.nextToken()
	if err != nil {
		return err
	}
	radius, err := strconv.ParseFloat(radiusToken, 64)
	if err != nil {
		s.invalidInput(radiusToken)
		return nil
	}

	WriteWithinRadius(s.out, s.tree.SearchWithinRadius(point, radius), radius)
	return nil
}

func (s *Shell) search() error {
	fmt.Fprint(s.out, "Enter the point to search (x y): ")
	point, ok, err := s.nextPoint()
	if err != nil || !ok {
		return err
	}

	entity, found, trace := s.tree.SearchWithTrace(point)
	WriteSearchTrace(s.out, entity, found, trace)
	return nil
}

func (s *Shell) addCities() error {
	fmt.Fprint(s.out, "Enter the number of cities you want to add: ")
	countToken, err := s.nextToken()
	if err != nil {
		return err
	}
	count, err := strconv.Atoi(countToken)
	if err != nil || count < 0 {
		s.invalidInput(countToken)
		return nil
	}

	for i := 0; i < count; i++ {
		fmt.Fprint(s.out, "Enter coordinates and city name: ")
		point, ok, err := s.nextPoint()
		if err != nil || !ok {
			return err
		}

		label, err := s.nextToken()
		if err != nil {
			return err
		}
		if len([]rune(label)) > importing.MaxLabelLength {
			fmt.Fprintf(s.out, "City names can have at most %d characters.\n", importing.MaxLabelLength)
			continue
		}

		entity := index.Entity{Position: point, Label: label}
		if s.tree.Insert(entity) {
			fmt.Fprintf(s.out, "Added city: %s\n", label)
		} else {
			fmt.Fprintf(s.out, "City %s not added: Outside of %s or position already taken.\n", label, s.tree.Bounds())
		}
	}

	return nil
}

// nextPoint reads two integer tokens. The boolean is false when a token isn't an integer, which has already been
// reported to the user.
func (s *Shell) nextPoint() (common.Point, bool, error) {
	var coordinates [2]int
	for i := range coordinates {
		token, err := s.nextToken()
		if err != nil {
			return common.Point{}, false, err
		}

		coordinates[i], err = strconv.Atoi(token)
		if err != nil {
			s.invalidInput(token)
			return common.Point{}, false, nil
		}
	}

	return common.Point{X: coordinates[0], Y: coordinates[1]}, true, nil
}

func (s *Shell) nextToken() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	err := s.scanner.Err()
	if err == bufio.ErrTooLong {
		// The scanner can't continue after an oversized token, so the rest of the input is lost.
		sigolo.Warnf("Stop reading shell input: %s", err.Error())
		fmt.Fprintln(s.out, "Invalid input: Value too long.")
		return "", errEndOfInput
	}
	if err != nil {
		return "", errors.Wrap(err, "Unable to read shell input")
	}
	return "", errEndOfInput
}

func (s *Shell) invalidInput(token string) {
	sigolo.Debugf("Invalid shell input '%s'", token)
	fmt.Fprintf(s.out, "Invalid input '%s'.\n", token)
}
