// Package nuvolos defines the public types and client interfaces of the
// Nuvolos REST API: organizations, spaces, instances, snapshots,
// applications, workloads and asynchronous tasks.
//
// A concrete client is built with internal/client.New:
//
//	c, err := client.New(&nuvolos.Config{
//		APIURL: "https://api.nuvolos.cloud",
//		APIKey: os.Getenv("NUVOLOS_API_KEY"),
//	})
//	if err != nil {
//		return err
//	}
//
//	orgs, err := c.Orgs().List(ctx)
//
// Every call that receives a non-2xx response fails with *APIError, which
// records the HTTP method, URL, status and body of the failed request.
package nuvolos
