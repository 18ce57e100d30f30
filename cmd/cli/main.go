package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "org":
		handleOrg(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`orgvault - organization management CLI

Usage:
  orgvault auth login -email <email> -password <password>
  orgvault auth logout
  orgvault auth who
  orgvault org create -name <name> -email <email> -password <password>
  orgvault org get -name <name>
  orgvault org update -name <name> [-email <email>] [-password <password>] [-new-name <name>]
  orgvault org delete -name <name>

Environment:
  ORGVAULT_URL   server base URL (default http://localhost:8080)`)
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: orgvault auth <login|logout|who>")
		return
	}

	switch args[0] {
	case "login":
		login(args[1:])
	case "logout":
		logout()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", args[0])
	}
}

func handleOrg(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: orgvault org <create|get|update|delete>")
		return
	}

	switch args[0] {
	case "create":
		createOrg(args[1:])
	case "get":
		getOrg(args[1:])
	case "update":
		updateOrg(args[1:])
	case "delete":
		deleteOrg(args[1:])
	default:
		fmt.Printf("unknown org command: %s\n", args[0])
	}
}

type session struct {
	Token            string `json:"access_token"`
	AdminID          string `json:"admin_id"`
	OrganizationID   string `json:"organization_id"`
	OrganizationName string `json:"organization_name"`
}

type orgView struct {
	OrganizationName string `json:"organization_name"`
	CollectionName   string `json:"collection_name"`
	AdminEmail       string `json:"admin_email"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

func login(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "admin email")
	pass := fs.String("password", "", "admin password")
	fs.Parse(args)

	if *email == "" || *pass == "" {
		fmt.Fprintln(os.Stderr, "email and password are required")
		os.Exit(1)
	}

	var sess session
	if err := call(http.MethodPost, "/api/login", "", map[string]string{
		"email":    *email,
		"password": *pass,
	}, &sess); err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		os.Exit(1)
	}
	if err := saveSession(&sess); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save session: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("logged in as admin of %q\n", sess.OrganizationName)
}

func logout() {
	if err := os.Remove(sessionPath()); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "logout failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("logged out")
}

func whoAmI() {
	sess, err := loadSession()
	if err != nil {
		fmt.Println("not logged in")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ADMIN ID\t%s\n", sess.AdminID)
	fmt.Fprintf(w, "ORGANIZATION\t%s\n", sess.OrganizationName)
	fmt.Fprintf(w, "ORGANIZATION ID\t%s\n", sess.OrganizationID)
	w.Flush()
}

func createOrg(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	name := fs.String("name", "", "organization name")
	email := fs.String("email", "", "admin email")
	pass := fs.String("password", "", "admin password")
	fs.Parse(args)

	if *name == "" || *email == "" || *pass == "" {
		fmt.Fprintln(os.Stderr, "name, email, and password are required")
		os.Exit(1)
	}

	var org orgView
	if err := call(http.MethodPost, "/api/org", "", map[string]string{
		"organization_name": *name,
		"email":             *email,
		"password":          *pass,
	}, &org); err != nil {
		fmt.Fprintf(os.Stderr, "create failed: %v\n", err)
		os.Exit(1)
	}
	printOrg(&org)
}

func getOrg(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	name := fs.String("name", "", "organization name")
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintln(os.Stderr, "name is required")
		os.Exit(1)
	}

	var org orgView
	if err := call(http.MethodGet, "/api/org?organization_name="+url.QueryEscape(*name), "", nil, &org); err != nil {
		fmt.Fprintf(os.Stderr, "get failed: %v\n", err)
		os.Exit(1)
	}
	printOrg(&org)
}

func updateOrg(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	name := fs.String("name", "", "organization name")
	email := fs.String("email", "", "new admin email")
	pass := fs.String("password", "", "new admin password")
	newName := fs.String("new-name", "", "new organization name")
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintln(os.Stderr, "name is required")
		os.Exit(1)
	}

	sess, err := loadSession()
	if err != nil {
		fmt.Fprintln(os.Stderr, "not logged in; run: orgvault auth login")
		os.Exit(1)
	}

	body := map[string]string{"organization_name": *name}
	if *email != "" {
		body["email"] = *email
	}
	if *pass != "" {
		body["password"] = *pass
	}
	if *newName != "" {
		body["new_organization_name"] = *newName
	}

	var org orgView
	if err := call(http.MethodPut, "/api/org", sess.Token, body, &org); err != nil {
		fmt.Fprintf(os.Stderr, "update failed: %v\n", err)
		os.Exit(1)
	}
	printOrg(&org)
}

func deleteOrg(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	name := fs.String("name", "", "organization name")
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintln(os.Stderr, "name is required")
		os.Exit(1)
	}

	sess, err := loadSession()
	if err != nil {
		fmt.Fprintln(os.Stderr, "not logged in; run: orgvault auth login")
		os.Exit(1)
	}

	if err := call(http.MethodDelete, "/api/org?organization_name="+url.QueryEscape(*name), sess.Token, nil, nil); err != nil {
		fmt.Fprintf(os.Stderr, "delete failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("organization %q deleted\n", *name)
}

func printOrg(org *orgView) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\t%s\n", org.OrganizationName)
	fmt.Fprintf(w, "PARTITION\t%s\n", org.CollectionName)
	fmt.Fprintf(w, "ADMIN\t%s\n", org.AdminEmail)
	fmt.Fprintf(w, "CREATED\t%s\n", org.CreatedAt)
	fmt.Fprintf(w, "UPDATED\t%s\n", org.UpdatedAt)
	w.Flush()
}

func call(method, path, token string, body interface{}, out interface{}) error {
	base := os.Getenv("ORGVAULT_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	payload := &bytes.Buffer{}
	if body != nil {
		if err := json.NewEncoder(payload).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, base+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func sessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".orgvault", "session.json")
}

func saveSession(sess *session) error {
	path := sessionPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func loadSession() (*session, error) {
	data, err := os.ReadFile(sessionPath())
	if err != nil {
		return nil, err
	}
	var sess session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	if sess.Token == "" {
		return nil, fmt.Errorf("no saved token")
	}
	return &sess, nil
}
