// Command setup seeds the local secret store for the ingestion
// pipeline. It takes exactly seven positional arguments and prints a
// per-step marker, exiting 1 if any step fails.
package main

import (
	"fmt"
	"os"

	"github.com/mitch-zink/landing-ai-document-pipeline/internal/secrets"
	"github.com/mitch-zink/landing-ai-document-pipeline/internal/warehouse/snowflake"
)

const defaultSecretsPath = "./secrets.yaml"

func main() {
	if len(os.Args) != 8 {
		fmt.Println(
			"Usage: setup <aws_access_key> <aws_secret_key> " +
				"<sf_user> <sf_private_key_path> <sf_account> <landing_ai_key> " +
				"<s3_bucket_name>",
		)
		os.Exit(1)
	}

	awsAccessKey := os.Args[1]
	awsSecretKey := os.Args[2]
	sfUser := os.Args[3]
	sfPrivateKeyPath := os.Args[4]
	sfAccount := os.Args[5]
	landingAIKey := os.Args[6]
	s3BucketName := os.Args[7]

	path := os.Getenv("DOC_PIPELINE_SECRETS_PATH")
	if path == "" {
		path = defaultSecretsPath
	}

	store, err := secrets.NewStore(path)
	if err != nil {
		fmt.Printf("✗ Error opening secret store: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Creating pipeline secrets...")

	success := true

	if !createAWSSecrets(store, awsAccessKey, awsSecretKey) {
		success = false
	}

	if !createWarehouseSecrets(store, sfUser, sfPrivateKeyPath, sfAccount) {
		success = false
	}

	if !createSecret(store, secrets.LandingAIAPIKey, landingAIKey) {
		success = false
	}

	if !createSecret(store, secrets.S3BucketName, s3BucketName) {
		success = false
	}

	if success {
		if err := store.Save(); err != nil {
			fmt.Printf("✗ Error writing secret store: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("\n✓ All secrets created successfully!")
		os.Exit(0)
	}

	fmt.Println("\n✗ Some secrets failed to create. Check the errors above.")
	os.Exit(1)
}

func createAWSSecrets(store *secrets.Store, accessKey, secretKey string) bool {
	store.Set(secrets.AWSAccessKeyID, accessKey)
	store.Set(secrets.AWSSecretAccessKey, secretKey)
	fmt.Println("✓ AWS credential secrets created successfully")
	return true
}

func createWarehouseSecrets(store *secrets.Store, user, privateKeyPath, account string) bool {
	privateKey, err := os.ReadFile(privateKeyPath)
	if err != nil {
		fmt.Printf("✗ Error reading private key file: %v\n", err)
		return false
	}

	if _, err := snowflake.ParsePrivateKey(privateKey); err != nil {
		fmt.Printf("✗ Error validating private key: %v\n", err)
		return false
	}

	store.Set(secrets.SnowflakeUser, user)
	store.Set(secrets.SnowflakeAccount, account)
	store.Set(secrets.SnowflakePrivateKey, string(privateKey))
	fmt.Println("✓ Warehouse connector secrets created successfully")
	return true
}

func createSecret(store *secrets.Store, name, value string) bool {
	if value == "" {
		fmt.Printf("✗ Error creating secret '%s': empty value\n", name)
		return false
	}

	store.Set(name, value)
	fmt.Printf("✓ Secret '%s' created successfully\n", name)
	return true
}
