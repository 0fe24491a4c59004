// Command rideflow walks one ride through its whole lifecycle against a
// running API: a rider books, an admin onboards and assigns a driver, the
// driver accepts, drives and collects cash, and both sides check stats.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type client struct {
	baseURL string
	http    *http.Client
}

type session struct {
	ID    uint   `json:"id"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

type ride struct {
	ID            uint    `json:"id"`
	Fare          float64 `json:"fare"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
}

func main() {
	baseURL := flag.String("api", "http://localhost:8080/api", "API base URL")
	adminEmail := flag.String("admin-email", os.Getenv("ADMIN_EMAIL"), "seeded admin email")
	adminPassword := flag.String("admin-password", os.Getenv("ADMIN_PASSWORD"), "seeded admin password")
	flag.Parse()

	c := &client{baseURL: *baseURL, http: &http.Client{Timeout: 10 * time.Second}}
	if err := c.run(*adminEmail, *adminPassword); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c *client) run(adminEmail, adminPassword string) error {
	suffix := time.Now().Unix()

	fmt.Println("=== Ride Lifecycle Walkthrough ===")

	fmt.Println("\n1. Rider signs up:")
	var rider session
	if err := c.do("POST", "/auth/register", "", map[string]any{
		"name":     "Walkthrough Rider",
		"email":    fmt.Sprintf("rider%d@example.com", suffix),
		"password": "rider-pass",
		"phone":    "9000000000",
	}, &rider); err != nil {
		return err
	}
	fmt.Printf("rider #%d\n", rider.ID)

	fmt.Println("\n2. Admin logs in and onboards a driver:")
	var admin session
	if err := c.do("POST", "/auth/login", "", map[string]any{"email": adminEmail, "password": adminPassword}, &admin); err != nil {
		return err
	}
	driverEmail := fmt.Sprintf("driver%d@example.com", suffix)
	var created struct {
		ID uint `json:"ID"`
	}
	if err := c.do("POST", "/admin/drivers", admin.Token, map[string]any{
		"name":     "Walkthrough Driver",
		"email":    driverEmail,
		"password": "driver-pass",
		"phone":    "9111111111",
		"vehicle":  map[string]any{"model": "Swift Dzire", "plateNumber": "WB02X0001", "type": "Sedan"},
	}, &created); err != nil {
		return err
	}
	if err := c.do("PUT", fmt.Sprintf("/admin/drivers/%d/approve", created.ID), admin.Token, nil, nil); err != nil {
		return err
	}
	var driver session
	if err := c.do("POST", "/auth/driver/login", "", map[string]any{"email": driverEmail, "password": "driver-pass"}, &driver); err != nil {
		return err
	}
	fmt.Printf("driver #%d approved\n", driver.ID)

	fmt.Println("\n3. Rider books Esplanade -> Salt Lake:")
	var r ride
	if err := c.do("POST", "/rides", rider.Token, map[string]any{
		"pickupLocation": map[string]any{"address": "Esplanade", "lat": 22.57, "lng": 88.36},
		"dropLocation":   map[string]any{"address": "Salt Lake", "lat": 22.58, "lng": 88.42},
	}, &r); err != nil {
		return err
	}
	fmt.Printf("ride #%d %s, fare %.0f\n", r.ID, r.Status, r.Fare)

	fmt.Println("\n4. Admin assigns the driver:")
	if err := c.do("PUT", fmt.Sprintf("/admin/rides/%d/assign", r.ID), admin.Token, map[string]any{"driverId": driver.ID}, &r); err != nil {
		return err
	}
	fmt.Printf("ride #%d %s\n", r.ID, r.Status)

	fmt.Println("\n5. Driver accepts, starts and completes:")
	if err := c.do("PUT", fmt.Sprintf("/rides/%d/accept", r.ID), driver.Token, nil, &r); err != nil {
		return err
	}
	fmt.Printf("ride #%d %s\n", r.ID, r.Status)
	for _, status := range []string{"ongoing", "completed"} {
		if err := c.do("PUT", fmt.Sprintf("/rides/%d/status", r.ID), driver.Token, map[string]any{"status": status}, &r); err != nil {
			return err
		}
		fmt.Printf("ride #%d %s\n", r.ID, r.Status)
	}

	fmt.Println("\n6. Driver collects cash:")
	if err := c.do("PUT", fmt.Sprintf("/rides/%d/collect-payment", r.ID), driver.Token, nil, &r); err != nil {
		return err
	}
	fmt.Printf("payment %s\n", r.PaymentStatus)

	fmt.Println("\n7. Stats:")
	var riderStats, driverStats map[string]any
	if err := c.do("GET", "/rides/stats", rider.Token, nil, &riderStats); err != nil {
		return err
	}
	if err := c.do("GET", "/rides/stats", driver.Token, nil, &driverStats); err != nil {
		return err
	}
	fmt.Printf("rider:  %v\ndriver: %v\n", riderStats, driverStats)
	return nil
}

// do sends body as JSON and decodes a 2xx response into out.
func (c *client) do(method, path, token string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
