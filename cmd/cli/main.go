package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
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
	case "property":
		handleProperty(args)
	case "bill":
		handleBill(args)
	case "admin":
		handleAdmin(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: estately auth <signup|signin|signout|who>")
		return
	}

	switch args[0] {
	case "signup":
		signUp(args[1:])
	case "signin":
		signIn(args[1:])
	case "signout":
		signOut()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", args[0])
	}
}

func handleProperty(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: estately property <list|get>")
		return
	}

	switch args[0] {
	case "list":
		listProperties(args[1:])
	case "get":
		getProperty(args[1:])
	default:
		fmt.Printf("unknown property command: %s\n", args[0])
	}
}

func handleBill(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: estately bill <list|overdue|mark-paid>")
		return
	}

	switch args[0] {
	case "list":
		listBills()
	case "overdue":
		listOverdueBills()
	case "mark-paid":
		markBillPaid(args[1:])
	default:
		fmt.Printf("unknown bill command: %s\n", args[0])
	}
}

func handleAdmin(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: estately admin <sweep|reindex>")
		return
	}

	switch args[0] {
	case "sweep":
		triggerSweep()
	case "reindex":
		triggerReindex()
	default:
		fmt.Printf("unknown admin command: %s\n", args[0])
	}
}

// envelope mirrors the server's response shape
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func signUp(args []string) {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	name := fs.String("name", "", "full name")
	password := fs.String("password", "", "password")
	role := fs.String("role", "tenant", "role (tenant, landlord, agent, builder)")

	fs.Parse(args)

	if *email == "" || *name == "" || *password == "" {
		fmt.Println("Error: email, name, and password are required")
		fs.PrintDefaults()
		return
	}

	resp, env, err := postJSON("/auth/signup", map[string]string{
		"email":    *email,
		"fullName": *name,
		"password": *password,
		"role":     *role,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if resp.StatusCode == http.StatusCreated {
		fmt.Printf("✓ Account created: %s\n", *email)
		fmt.Println("  Check your email for the verification code, then run: estately auth signin")
	} else {
		fmt.Printf("✗ Signup failed: %s\n", env.Message)
	}
}

func signIn(args []string) {
	fs := flag.NewFlagSet("signin", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	resp, env, err := postJSON("/auth/signin", map[string]string{
		"email":    *email,
		"password": *password,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("✗ Signin failed: %s\n", env.Message)
		return
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil || result.Token == "" {
		fmt.Println("✗ Signin response missing token")
		return
	}

	if err := saveToken(result.Token); err != nil {
		fmt.Printf("✗ Failed to save token: %v\n", err)
		return
	}
	fmt.Printf("✓ Signed in as: %s\n", *email)
}

func signOut() {
	os.Remove(tokenFile())
	fmt.Println("✓ Signed out")
}

func whoAmI() {
	resp, env, err := getAuthed("/users/me")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Println("Not signed in")
		return
	}

	var user struct {
		Email    string `json:"email"`
		FullName string `json:"fullName"`
		Role     string `json:"role"`
	}
	json.Unmarshal(env.Data, &user)
	fmt.Printf("✓ %s <%s> (%s)\n", user.FullName, user.Email, user.Role)
}

func listProperties(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	city := fs.String("city", "", "filter by city")
	fs.Parse(args)

	path := "/properties"
	if *city != "" {
		path += "?city=" + *city
	}

	resp, env, err := getAuthed(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("✗ %s\n", env.Message)
		return
	}

	var properties []struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		City        string `json:"city"`
		RentMonthly int64  `json:"rentMonthly"`
		Available   bool   `json:"available"`
	}
	json.Unmarshal(env.Data, &properties)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCITY\tRENT\tAVAILABLE")
	for _, p := range properties {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%v\n", p.ID, p.Title, p.City, p.RentMonthly, p.Available)
	}
	w.Flush()
}

func getProperty(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: estately property get <property-id>")
		return
	}

	resp, env, err := getAuthed("/properties/" + args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("✗ %s\n", env.Message)
		return
	}

	var pretty bytes.Buffer
	json.Indent(&pretty, env.Data, "", "  ")
	fmt.Println(pretty.String())
}

func listBills() {
	printBills("/bills")
}

func listOverdueBills() {
	printBills("/bills/overdue")
}

func printBills(path string) {
	resp, env, err := getAuthed(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("✗ %s\n", env.Message)
		return
	}

	var bills []struct {
		ID       string `json:"id"`
		BillType string `json:"billType"`
		Amount   int64  `json:"amount"`
		Status   string `json:"status"`
		DueDate  string `json:"dueDate"`
	}
	json.Unmarshal(env.Data, &bills)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tAMOUNT\tSTATUS\tDUE")
	for _, b := range bills {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", b.ID, b.BillType, b.Amount, b.Status, b.DueDate)
	}
	w.Flush()
}

func markBillPaid(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: estately bill mark-paid <bill-id>")
		return
	}

	resp, env, err := postJSON("/bills/"+args[0]+"/mark-as-paid", nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if resp.StatusCode == http.StatusOK {
		fmt.Printf("✓ Bill %s marked paid\n", args[0])
	} else {
		fmt.Printf("✗ %s\n", env.Message)
	}
}

func triggerSweep() {
	resp, env, err := postJSON("/admin/sweep", nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("✗ %s\n", env.Message)
		return
	}

	var result struct {
		BillsOverdue  int64 `json:"billsOverdue"`
		LeasesExpired int64 `json:"leasesExpired"`
	}
	json.Unmarshal(env.Data, &result)
	fmt.Printf("✓ Sweep done: %d bills overdue, %d leases expired\n", result.BillsOverdue, result.LeasesExpired)
}

func triggerReindex() {
	resp, env, err := postJSON("/admin/reindex", nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("✗ %s\n", env.Message)
		return
	}

	var result struct {
		Indexed int `json:"indexed"`
	}
	json.Unmarshal(env.Data, &result)
	fmt.Printf("✓ Reindexed %d properties\n", result.Indexed)
}

func postJSON(path string, payload interface{}) (*http.Response, *envelope, error) {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequest(http.MethodPost, getAPIURL()+path, &body)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)

	return doRequest(req)
}

func getAuthed(path string) (*http.Response, *envelope, error) {
	req, err := http.NewRequest(http.MethodGet, getAPIURL()+path, nil)
	if err != nil {
		return nil, nil, err
	}
	addAuthHeader(req)

	return doRequest(req)
}

func doRequest(req *http.Request) (*http.Response, *envelope, error) {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	env := &envelope{}
	json.NewDecoder(resp.Body).Decode(env)
	return resp, env, nil
}

func getAPIURL() string {
	if url := os.Getenv("ESTATELY_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.estately/token"
}

func saveToken(token string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(home+"/.estately", 0700); err != nil {
		return err
	}
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	if token := loadToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`Estately CLI

Usage:
  estately <command> [options]

Commands:
  auth      Account operations (signup, signin, signout, who)
  property  Listing operations (list, get)
  bill      Utility bill operations (list, overdue, mark-paid)
  admin     Admin operations (sweep, reindex) - admin access required
  help      Show this help message

Environment Variables:
  ESTATELY_API    API endpoint (default: http://localhost:8080/api)

Examples:
  estately auth signup -email landlord@example.com -name "Ada Landlord" -password secret123 -role landlord
  estately auth signin -email landlord@example.com -password secret123
  estately property list -city Austin
  estately bill overdue
  estately bill mark-paid 7f3b2c90-1af4-4b21-9d2e-8c1f0a6e5d43
`)
}
